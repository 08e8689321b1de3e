package meli

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultSite is Mercado Libre Argentina.
const DefaultSite = "MLA"

// Endpoints builds request paths for one site.
type Endpoints struct {
	Site string
}

// SitePath is the path describing the site itself.
func (e Endpoints) SitePath() string {
	return "/sites/" + url.PathEscape(e.Site)
}

// Categories is the path listing every top-level category of the site.
func (e Endpoints) Categories() string {
	return "/sites/" + url.PathEscape(e.Site) + "/categories"
}

// SearchCategory is the path of one page of products in a category.
func (e Endpoints) SearchCategory(category string, offset, limit int) string {
	return e.search("category", category, offset, limit)
}

// SearchQuery is the path of one page of products matching a free-text query.
func (e Endpoints) SearchQuery(query string, offset, limit int) string {
	return e.search("q", query, offset, limit)
}

func (e Endpoints) search(param, value string, offset, limit int) string {
	var b strings.Builder
	b.WriteString("/sites/")
	b.WriteString(url.PathEscape(e.Site))
	b.WriteString("/search?")
	b.WriteString(param)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
	b.WriteString("&offset=")
	b.WriteString(strconv.Itoa(offset))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(limit))
	return b.String()
}

// Item is the path of a single item, including its pictures.
func (e Endpoints) Item(id string) string {
	return "/items/" + url.PathEscape(id)
}

// Items is the path of a multi-get for the given ids.
func (e Endpoints) Items(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}
	return "/items?ids=" + strings.Join(escaped, ",")
}

// Description is the path of an item's description.
func (e Endpoints) Description(id string) string {
	return "/items/" + url.PathEscape(id) + "/description"
}

// Currency is the path of a currency definition.
func (e Endpoints) Currency(code string) string {
	return "/currencies/" + url.PathEscape(code)
}
