package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/raidloot/internal/game/item"
)

// ErrTemplateNotFound is returned when a template id is not in the catalog.
var ErrTemplateNotFound = errors.New("catalog: template not found")

// Preset is a pre-assembled item tree, typically a weapon with mods.
type Preset struct {
	ID      string    `yaml:"id" json:"id"`
	Name    string    `yaml:"name" json:"name"`
	Tpl     string    `yaml:"tpl" json:"tpl"`
	Default bool      `yaml:"default" json:"default"`
	Items   item.Tree `yaml:"items" json:"items"`
}

// Validate checks that the preset is a well-formed tree rooted at Tpl.
func (p *Preset) Validate() error {
	if p.ID == "" {
		return errors.New("preset id must not be empty")
	}
	if err := p.Items.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.ID, err)
	}
	if p.Items.Root().Tpl != p.Tpl {
		return fmt.Errorf("preset %q: root tpl %q does not match %q", p.ID, p.Items.Root().Tpl, p.Tpl)
	}
	return nil
}

// Catalog holds every item template and preset indexed by id.
//
// Invariant: a built Catalog is read-only and safe to share across goroutines.
type Catalog struct {
	templates map[string]*Template
	ancestors map[string][]string
	presets   map[string][]*Preset
}

// Build indexes templates and presets, computes each template's ancestor chain
// and Kind, and validates cross references.
//
// Precondition: every template has passed Validate.
// Postcondition: returns a Catalog or an error describing every duplicate id,
// unknown parent, parent cycle, or preset for an unknown template.
func Build(templates []*Template, presets []*Preset) (*Catalog, error) {
	c := &Catalog{
		templates: make(map[string]*Template, len(templates)),
		ancestors: make(map[string][]string, len(templates)),
		presets:   make(map[string][]*Preset),
	}
	var errs []error
	for _, t := range templates {
		if _, exists := c.templates[t.ID]; exists {
			errs = append(errs, fmt.Errorf("template id %q already registered", t.ID))
			continue
		}
		c.templates[t.ID] = t
	}
	for id, t := range c.templates {
		chain, err := c.chain(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.ancestors[id] = chain
	}
	for _, t := range c.templates {
		t.kind, t.cylinder = c.classify(t)
	}
	for _, p := range presets {
		if _, ok := c.templates[p.Tpl]; !ok {
			errs = append(errs, fmt.Errorf("preset %q references unknown template %q", p.ID, p.Tpl))
			continue
		}
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		c.presets[p.Tpl] = append(c.presets[p.Tpl], p)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog: build failed: %w", errors.Join(errs...))
	}
	return c, nil
}

// chain returns the ancestor ids of t, nearest first.
func (c *Catalog) chain(t *Template) ([]string, error) {
	var out []string
	seen := map[string]bool{t.ID: true}
	for p := t.Parent; p != ""; {
		if seen[p] {
			return nil, fmt.Errorf("template %q has a parent cycle through %q", t.ID, p)
		}
		seen[p] = true
		parent, ok := c.templates[p]
		if !ok {
			return nil, fmt.Errorf("template %q references unknown parent %q", t.ID, p)
		}
		out = append(out, p)
		p = parent.Parent
	}
	return out, nil
}

func (c *Catalog) classify(t *Template) (Kind, bool) {
	if t.Type == TypeNode {
		return KindNode, false
	}
	is := func(b BaseClass) bool { return c.IsOfBaseClass(t.ID, b) }
	switch {
	case is(BaseMoney):
		return KindMoney, false
	case is(BaseAmmo):
		return KindAmmo, false
	case is(BaseAmmoBox):
		return KindAmmoBox, false
	case is(BaseMagazine):
		return KindMagazine, is(BaseCylinderMagazine)
	case is(BaseWeapon):
		return KindWeapon, false
	case (is(BaseArmor) || is(BaseVest) || is(BaseHeadwear)) && len(t.Slots) > 0:
		return KindArmor, false
	case len(t.Grids) > 0:
		return KindContainer, false
	}
	return KindOther, false
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// Template returns the template for id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (c *Catalog) Template(id string) (*Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// Get returns the template for id or an error wrapping ErrTemplateNotFound.
func (c *Catalog) Get(id string) (*Template, error) {
	t, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return t, nil
}

// IsOfBaseClass reports whether tpl is, or descends from, any of classes.
func (c *Catalog) IsOfBaseClass(tpl string, classes ...BaseClass) bool {
	for _, b := range classes {
		if tpl == string(b) {
			return true
		}
		for _, a := range c.ancestors[tpl] {
			if a == string(b) {
				return true
			}
		}
	}
	return false
}

// DefaultPreset returns the default preset for tpl. When no preset is flagged
// default the first registered preset is used.
func (c *Catalog) DefaultPreset(tpl string) (*Preset, bool) {
	ps := c.presets[tpl]
	if len(ps) == 0 {
		return nil, false
	}
	for _, p := range ps {
		if p.Default {
			return p, true
		}
	}
	return ps[0], true
}

// Price returns the reference price for tpl, or 0 when unknown.
func (c *Catalog) Price(tpl string) int {
	if t, ok := c.templates[tpl]; ok {
		return t.Price
	}
	return 0
}

// TreePrice sums the reference price of every node in t times its stack count.
func (c *Catalog) TreePrice(t item.Tree) int {
	total := 0
	for _, it := range t {
		total += c.Price(it.Tpl) * it.StackCount()
	}
	return total
}

// CalibersOf returns the distinct calibers of the given cartridge templates,
// sorted for deterministic selection. Unknown templates are ignored.
func (c *Catalog) CalibersOf(cartridges []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tpl := range cartridges {
		t, ok := c.templates[tpl]
		if !ok || t.Caliber == "" || seen[t.Caliber] {
			continue
		}
		seen[t.Caliber] = true
		out = append(out, t.Caliber)
	}
	sort.Strings(out)
	return out
}

// ByKind returns the ids of every template with the given kind, sorted.
func (c *Catalog) ByKind(k Kind) []string {
	var out []string
	for id, t := range c.templates {
		if t.kind == k {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
