// Package schem rewrites Sponge schematic documents from the v3 layout
// (MC 1.20.5+, everything nested under a "Schematic"/"Blocks" hierarchy)
// into the flat v2 layout WorldEdit 7.2.x can load. The rewrite is a pure
// structural transform over the nbt tree - entries it does not recognize
// pass through unchanged and in their original relative order.
package schem

import (
	"go.uber.org/zap"

	"schemconv/nbt"
)

// Item components (enchantments, damage, custom names) have no v2
// representation and are stripped, not converted.
const componentsTag = "components"

// platformTags are Paper/Bukkit/Spigot diagnostic entity tags which have no
// meaning outside the server that wrote them.
var platformTags = map[string]struct{}{
	"Paper.SpawnReason":     {},
	"Paper.Origin":          {},
	"Paper.OriginWorld":     {},
	"Paper.ShouldBurnInDay": {},
	"Bukkit.updateLevel":    {},
	"Bukkit.Aware":          {},
	"Spigot.ticksLived":     {},
	"WorldUUIDMost":         {},
	"WorldUUIDLeast":        {},
}

// Convert builds a v2 document from a v3 one. The input document is never
// mutated. Already converted (v2) input passes through with only the
// Version value and root name normalized. Missing optional structure -
// Blocks, Entities, inner Data compounds - is handled by omission, never an
// error. log is used for progress diagnostics only and may be nil.
func Convert(doc *nbt.Document, log *zap.Logger) *nbt.Document {
	if log == nil {
		log = zap.NewNop()
	}

	work := workingCompound(doc)

	if ver, ok := work.Find("Version"); ok {
		if v, ok := nbt.AsInt(ver); ok {
			log.Info("Source schematic version", zap.Int64("version", v))
		}
	}

	out := make([]nbt.Entry, 0, len(work.Entries))
	for _, e := range work.Entries {
		switch e.Name {
		case "Version":
			out = append(out, nbt.Entry{Name: "Version", Value: nbt.Int(2)})
			log.Info("Version forced", zap.Int("version", 2))
		case "Entities":
			out = append(out, nbt.Entry{Name: "Entities", Value: convertEntities(e.Value, log)})
		case "Blocks":
			if blocks, ok := e.Value.(nbt.Compound); ok {
				out = append(out, expandBlocks(blocks, log)...)
			} else {
				out = append(out, e)
			}
		default:
			out = append(out, e)
		}
	}

	return &nbt.Document{RootName: "Schematic", Root: nbt.Compound{Entries: out}}
}

// workingCompound unwraps the v3 root nesting: Root("") -> Schematic -> ...
// becomes the inner compound, while already flat (v2) input is used as is.
func workingCompound(doc *nbt.Document) nbt.Compound {
	if doc.RootName == "" || doc.RootName == "Schematic" {
		if inner, ok := doc.Root.Find("Schematic"); ok {
			if c, ok := inner.(nbt.Compound); ok {
				return c
			}
		}
	}
	return doc.Root
}

// expandBlocks lifts the sub-entries of the v3 Blocks compound to the top
// level: Palette (plus derived PaletteMax), Data renamed to BlockData and
// the rebuilt BlockEntities list.
func expandBlocks(blocks nbt.Compound, log *zap.Logger) []nbt.Entry {
	var out []nbt.Entry

	if pal, ok := blocks.Find("Palette"); ok {
		out = append(out, nbt.Entry{Name: "Palette", Value: pal})
		var size int
		if pc, ok := pal.(nbt.Compound); ok {
			size = pc.Len()
		}
		out = append(out, nbt.Entry{Name: "PaletteMax", Value: nbt.Int(size)})
		log.Info("Palette lifted", zap.Int("entries", size))
	}

	if data, ok := blocks.Find("Data"); ok {
		out = append(out, nbt.Entry{Name: "BlockData", Value: data})
		log.Info("Blocks.Data renamed to BlockData")
	}

	if be, ok := blocks.Find("BlockEntities"); ok {
		converted, total, withItems := convertBlockEntities(be)
		out = append(out, nbt.Entry{Name: "BlockEntities", Value: converted})
		log.Info("BlockEntities rebuilt", zap.Int("total", total), zap.Int("withItems", withItems))
	}

	return out
}

// convertBlockEntities rebuilds the v3 BlockEntities list: every compound
// element keeps Id and Pos, then gets its Data compound flattened into it
// with the duplicate lowercase "id" skipped, Items lists converted and
// components dropped.
func convertBlockEntities(v nbt.Tag) (nbt.Tag, int, int) {
	lst, ok := v.(nbt.List)
	if !ok {
		return v, 0, 0
	}

	withItems := 0
	items := make([]nbt.Tag, 0, len(lst.Items))
	for _, el := range lst.Items {
		be, ok := el.(nbt.Compound)
		if !ok {
			items = append(items, el)
			continue
		}

		var entries []nbt.Entry
		if id, ok := be.Find("Id"); ok {
			entries = append(entries, nbt.Entry{Name: "Id", Value: id})
		}
		if pos, ok := be.Find("Pos"); ok {
			entries = append(entries, nbt.Entry{Name: "Pos", Value: pos})
		}
		if data, ok := be.Find("Data"); ok {
			if dc, ok := data.(nbt.Compound); ok {
				for _, de := range dc.Entries {
					switch {
					case de.Name == "id":
						// duplicate of the already copied Id
					case de.Name == componentsTag:
					case de.Name == "Items":
						if _, isList := de.Value.(nbt.List); isList {
							withItems++
						}
						entries = append(entries, nbt.Entry{Name: "Items", Value: ConvertItemList(de.Value)})
					default:
						entries = append(entries, de)
					}
				}
			}
		}
		items = append(items, nbt.Compound{Entries: entries})
	}
	return nbt.List{Elem: nbt.KindCompound, Items: items}, len(items), withItems
}

// convertEntities rebuilds the v3 Entities list. Per entity compound the Id
// and Pos entries are kept, the inner Data compound is flattened into the
// entity (minus the duplicated lowercase id and Pos) and then entity level
// fixups are applied. Non-list values and non-compound elements pass
// through unchanged.
func convertEntities(v nbt.Tag, log *zap.Logger) nbt.Tag {
	lst, ok := v.(nbt.List)
	if !ok || len(lst.Items) == 0 {
		log.Info("Entities", zap.Int("count", 0))
		return v
	}

	items := make([]nbt.Tag, 0, len(lst.Items))
	for _, el := range lst.Items {
		ent, ok := el.(nbt.Compound)
		if !ok {
			items = append(items, el)
			continue
		}

		var entries []nbt.Entry
		if id, ok := ent.Find("Id"); ok {
			entries = append(entries, nbt.Entry{Name: "Id", Value: id})
		}
		if pos, ok := ent.Find("Pos"); ok {
			entries = append(entries, nbt.Entry{Name: "Pos", Value: pos})
		}
		if data, ok := ent.Find("Data"); ok {
			if dc, ok := data.(nbt.Compound); ok {
				for _, de := range dc.Entries {
					if de.Name == "id" || de.Name == "Pos" {
						continue
					}
					entries = append(entries, de)
				}
			}
		}
		items = append(items, nbt.Compound{Entries: fixupEntity(entries)})
	}
	log.Info("Entities", zap.Int("count", len(items)))
	return nbt.List{Elem: lst.Elem, Items: items}
}

// fixupEntity applies per-entity corrections: platform diagnostic tags are
// dropped, block_pos is decomposed into TileX/TileY/TileZ and a held Item
// compound goes through item conversion.
func fixupEntity(entries []nbt.Entry) []nbt.Entry {
	out := make([]nbt.Entry, 0, len(entries))
	var tile nbt.IntArray
	for _, e := range entries {
		if _, drop := platformTags[e.Name]; drop {
			continue
		}
		if e.Name == "block_pos" {
			if arr, ok := e.Value.(nbt.IntArray); ok && len(arr) == 3 {
				tile = arr
				continue
			}
		}
		if e.Name == "Item" {
			if item, ok := e.Value.(nbt.Compound); ok {
				out = append(out, nbt.Entry{Name: "Item", Value: ConvertItem(item)})
				continue
			}
		}
		out = append(out, e)
	}
	if tile != nil {
		out = append(out,
			nbt.Entry{Name: "TileX", Value: nbt.Int(tile[0])},
			nbt.Entry{Name: "TileY", Value: nbt.Int(tile[1])},
			nbt.Entry{Name: "TileZ", Value: nbt.Int(tile[2])},
		)
	}
	return out
}

// ConvertItem rewrites a single item compound from the 1.21+ shape to the
// 1.20.1 one: count of any integer kind becomes Count (Byte) clamped into
// [0, 127] at the same position, the components entry is dropped, anything
// else survives in order.
func ConvertItem(item nbt.Compound) nbt.Compound {
	out := nbt.Compound{Entries: make([]nbt.Entry, 0, len(item.Entries))}
	for _, e := range item.Entries {
		switch {
		case e.Name == "count" && e.Value.Kind().IsInteger():
			v, _ := nbt.AsInt(e.Value)
			out.Entries = append(out.Entries, nbt.Entry{Name: "Count", Value: nbt.Byte(clampCount(v))})
		case e.Name == componentsTag:
		default:
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// ConvertItemList maps ConvertItem over every compound element of an Items
// list. Anything that is not a list is returned unchanged.
func ConvertItemList(v nbt.Tag) nbt.Tag {
	lst, ok := v.(nbt.List)
	if !ok {
		return v
	}
	items := make([]nbt.Tag, 0, len(lst.Items))
	for _, el := range lst.Items {
		if item, ok := el.(nbt.Compound); ok {
			items = append(items, ConvertItem(item))
		} else {
			items = append(items, el)
		}
	}
	return nbt.List{Elem: lst.Elem, Items: items}
}

func clampCount(v int64) int8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}
