package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Material describes one kind of solid terrain.
type Material struct {
	Name     string  `yaml:"name"`
	Glyph    string  `yaml:"glyph"`    // single character used in map files
	Strength float64 `yaml:"strength"` // starting health of a cell
	DropItem string  `yaml:"drop_item"`
	DropMin  int     `yaml:"drop_min"`
	DropMax  int     `yaml:"drop_max"`
	Mineable *bool   `yaml:"mineable"` // default true
	Rarity   float64 `yaml:"rarity"`   // 0 common .. 1 very rare
}

// IsMineable reports whether miners can harvest the material.
func (m *Material) IsMineable() bool {
	return m.Mineable == nil || *m.Mineable
}

type materialListFile struct {
	Materials []Material `yaml:"materials"`
}

// MaterialTable holds material definitions indexed by name and glyph.
type MaterialTable struct {
	byName  map[string]*Material
	byGlyph map[rune]*Material
}

// Get returns the material with the given name, or nil.
func (t *MaterialTable) Get(name string) *Material {
	return t.byName[name]
}

// ByGlyph returns the material drawn with r in map files, or nil.
func (t *MaterialTable) ByGlyph(r rune) *Material {
	return t.byGlyph[r]
}

// ByDrop returns the material whose drop item is kind, or nil.
func (t *MaterialTable) ByDrop(kind string) *Material {
	for _, m := range t.byName {
		if m.DropItem == kind {
			return m
		}
	}
	return nil
}

// Names returns all material names, sorted.
func (t *MaterialTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *MaterialTable) Count() int {
	return len(t.byName)
}

// LoadMaterialTable loads material definitions from a YAML file.
func LoadMaterialTable(path string) (*MaterialTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material_list: %w", err)
	}
	return ParseMaterialTable(raw)
}

// ParseMaterialTable builds a table from YAML bytes.
func ParseMaterialTable(raw []byte) (*MaterialTable, error) {
	var f materialListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse material_list: %w", err)
	}
	t := &MaterialTable{
		byName:  make(map[string]*Material, len(f.Materials)),
		byGlyph: make(map[rune]*Material, len(f.Materials)),
	}
	for i := range f.Materials {
		m := &f.Materials[i]
		if m.Name == "" {
			return nil, fmt.Errorf("material #%d: missing name", i)
		}
		if _, dup := t.byName[m.Name]; dup {
			return nil, fmt.Errorf("material %s: duplicate name", m.Name)
		}
		glyph := []rune(m.Glyph)
		if len(glyph) != 1 {
			return nil, fmt.Errorf("material %s: glyph must be one character", m.Name)
		}
		if glyph[0] == GlyphFloor || glyph[0] == GlyphSpawn {
			return nil, fmt.Errorf("material %s: glyph %q is reserved", m.Name, m.Glyph)
		}
		if other, dup := t.byGlyph[glyph[0]]; dup {
			return nil, fmt.Errorf("material %s: glyph %q already used by %s", m.Name, m.Glyph, other.Name)
		}
		if m.Strength <= 0 {
			m.Strength = 1
		}
		if m.DropItem == "" {
			m.DropItem = m.Name + "_item"
		}
		if m.DropMax < m.DropMin {
			m.DropMax = m.DropMin
		}
		t.byName[m.Name] = m
		t.byGlyph[glyph[0]] = m
	}
	return t, nil
}
