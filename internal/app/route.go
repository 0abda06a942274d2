package app

import "strings"

// Section is a top-level view.
type Section string

const (
	SectionCatalog Section = "catalog"
	SectionProduct Section = "product"
	SectionHistory Section = "history"
)

// Route identifies a view. Product routes carry the product id.
type Route struct {
	Section   Section
	ProductID string
}

func CatalogRoute() Route { return Route{Section: SectionCatalog} }

func HistoryRoute() Route { return Route{Section: SectionHistory} }

func ProductRoute(id string) Route { return Route{Section: SectionProduct, ProductID: id} }

// String returns the route path reported to the coordinator.
func (r Route) String() string {
	if r.Section == SectionProduct {
		return string(SectionProduct) + "/" + r.ProductID
	}
	return string(r.Section)
}

// ParseRoute is the inverse of Route.String.
func ParseRoute(s string) (Route, bool) {
	section, id, _ := strings.Cut(s, "/")
	switch Section(section) {
	case SectionCatalog, SectionHistory:
		return Route{Section: Section(section)}, id == ""
	case SectionProduct:
		return ProductRoute(id), id != ""
	default:
		return Route{}, false
	}
}

// tab returns the header tab the route belongs to.
func (r Route) tab() string {
	if r.Section == SectionProduct {
		return string(SectionCatalog)
	}
	return string(r.Section)
}
