package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
}

// Store is the immutable product table. It is fully built in NewStore and
// never mutated afterwards, so readers need no locking.
type Store struct {
	byID     map[string]Product
	products []Product // sorted by id
}

// NewStore builds the table. Product ids are normalized to trimmed
// lower-case, which is the form queries are compared in.
func NewStore(products []Product) *Store {
	s := &Store{byID: make(map[string]Product, len(products))}

	for _, p := range products {
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		s.byID[p.ID] = p
	}

	s.products = make([]Product, 0, len(s.byID))
	for _, p := range s.byID {
		s.products = append(s.products, p)
	}
	sort.Slice(s.products, func(i, j int) bool { return s.products[i].ID < s.products[j].ID })

	return s
}

func (s *Store) Get(id string) (Product, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// List returns all products sorted by id.
func (s *Store) List() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Len() int { return len(s.products) }

func product(id, name, unit, price string) Product {
	return Product{ID: id, Name: name, Unit: unit, Price: decimal.RequireFromString(price)}
}

// BuildingMaterials is the fixed catalog the service ships with.
func BuildingMaterials() []Product {
	return []Product{
		product("concrete_bag", "Concrete Mix 60lb", "bag", "5.75"),
		product("plywood_sheet", "Plywood 3/4in 4x8", "sheet", "42.50"),
		product("lumber_2x4", "Lumber 2x4x8 SPF", "piece", "4.25"),
		product("drywall_panel", "Drywall 1/2in 4x8", "panel", "12.40"),
		product("rebar_10ft", "Rebar #4 10ft", "piece", "8.10"),
		product("brick_clay", "Clay Brick", "each", "0.55"),
		product("mortar_bag", "Mortar Mix 60lb", "bag", "6.30"),
		product("insulation_roll", "Fiberglass Insulation R-13", "roll", "16.90"),
		product("roof_shingle", "Asphalt Shingles Bundle", "bundle", "31.00"),
		product("galv_nails", "Galvanized Nails 1lb", "box", "4.80"),
		product("wood_screws", "Wood Screws 1lb", "box", "5.10"),
		product("paint_gallon", "Interior Paint White", "gallon", "24.75"),
		product("primer_gallon", "Primer Sealer", "gallon", "21.30"),
		product("acrylic_caulk", "Acrylic Caulk 10oz", "tube", "3.40"),
		product("pvc_pipe_10ft", "PVC Pipe 3/4in 10ft", "piece", "6.60"),
		product("copper_pipe_10ft", "Copper Pipe 1/2in 10ft", "piece", "32.00"),
		product("electrical_cable", "NM-B Cable 12/2 50ft", "roll", "48.00"),
		product("duplex_outlet", "Duplex Outlet 15A", "each", "1.20"),
		product("toggle_switch", "Toggle Light Switch", "each", "1.40"),
		product("led_fixture", "LED Ceiling Fixture", "each", "36.00"),
	}
}
