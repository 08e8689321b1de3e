package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/meli-catalog/internal/catalog"
	"github.com/xenking/meli-catalog/internal/currency"
	"github.com/xenking/meli-catalog/internal/prefs"
	"github.com/xenking/meli-catalog/pkg/health"
)

var (
	// ErrUsage is returned for unknown commands and missing arguments.
	ErrUsage = errors.New("invalid usage")
	// ErrUnhealthy is returned by the health command when a check fails.
	ErrUnhealthy = errors.New("unhealthy")
)

// Usage lists the available commands.
const Usage = `usage: catalog [flags] <command> [args]

commands:
  categories                   list the site's categories
  search-category <id>         list products of a category
  search <query>               search products and remember the query
  items <id>...                fetch products by id
  pictures <id>                list picture URLs of an item
  description <id>             print an item's description
  currency <code>              print a currency symbol
  price <code> <amount>        format a price
  favorites [list|show]        list favorite ids, or fetch them as products
  favorites add|remove <id>    change favorites
  recent [list]                list recent searches
  recent add <query>           record a search
  health                       check the API and storage are reachable`

// CLI executes catalog commands against its dependencies.
type CLI struct {
	Catalog   *catalog.Service
	Prices    *currency.Cache
	Favorites *prefs.Favorites
	Recent    *prefs.Recent
	Health    *health.Checker
	// Pages bounds the pages fetched by paginated commands.
	Pages  int
	Logger *zap.Logger
}

func usagef(format string, args ...any) error {
	return errors.Wrapf(ErrUsage, format, args...)
}

// Exec runs the command named by args[0], writing results to out.
func (c *CLI) Exec(ctx context.Context, out *Output, args []string) error {
	if len(args) == 0 {
		return usagef("missing command")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "categories":
		return c.categories(ctx, out)
	case "search-category":
		if len(args) != 1 {
			return usagef("search-category takes one category id")
		}
		return c.searchCategory(ctx, out, args[0])
	case "search":
		if len(args) != 1 {
			return usagef("search takes one query")
		}
		return c.search(ctx, out, args[0])
	case "items":
		return c.items(ctx, out, args)
	case "pictures":
		if len(args) != 1 {
			return usagef("pictures takes one item id")
		}
		return c.pictures(ctx, out, args[0])
	case "description":
		if len(args) != 1 {
			return usagef("description takes one item id")
		}
		return c.description(ctx, out, args[0])
	case "currency":
		if len(args) != 1 {
			return usagef("currency takes one currency code")
		}
		return c.currency(ctx, out, args[0])
	case "price":
		if len(args) != 2 {
			return usagef("price takes a currency code and an amount")
		}
		return c.price(ctx, out, args[0], args[1])
	case "favorites":
		return c.favorites(ctx, out, args)
	case "recent":
		return c.recent(ctx, out, args)
	case "health":
		return c.checkHealth(ctx, out)
	default:
		return usagef("unknown command %q", cmd)
	}
}

// paginate requests up to pages pages, stopping early once a page adds nothing.
func paginate[T any](ctx context.Context, pages int, fetch func(context.Context, []T) (*catalog.Result[T], error)) ([]T, error) {
	var acc []T
	for range max(pages, 1) {
		res, err := fetch(ctx, acc)
		if err != nil {
			return nil, err
		}
		grew := res.Next > len(acc)
		acc = res.Items
		if !grew {
			break
		}
	}
	return acc, nil
}

func writeProducts(out *Output, products []catalog.Product) error {
	for _, p := range products {
		if err := out.Write(p.Encode); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) categories(ctx context.Context, out *Output) error {
	res, err := c.Catalog.Categories(ctx, nil)
	if err != nil {
		return err
	}
	for _, cat := range res.Items {
		if err := out.Write(cat.Encode); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) searchCategory(ctx context.Context, out *Output, id string) error {
	products, err := paginate(ctx, c.Pages, func(ctx context.Context, acc []catalog.Product) (*catalog.Result[catalog.Product], error) {
		return c.Catalog.SearchCategory(ctx, id, acc)
	})
	if err != nil {
		return err
	}
	return writeProducts(out, products)
}

func (c *CLI) search(ctx context.Context, out *Output, query string) error {
	if err := c.Recent.Add(ctx, query); err != nil {
		c.Logger.Warn("Could not record search", zap.String("query", query), zap.Error(err))
	}
	products, err := paginate(ctx, c.Pages, func(ctx context.Context, acc []catalog.Product) (*catalog.Result[catalog.Product], error) {
		return c.Catalog.SearchQuery(ctx, query, acc)
	})
	if err != nil {
		return err
	}
	return writeProducts(out, products)
}

func (c *CLI) fetchItems(ctx context.Context, ids []string) ([]catalog.Product, error) {
	var acc []catalog.Product
	for len(acc) < len(ids) {
		res, err := c.Catalog.Items(ctx, ids, acc)
		if err != nil {
			return nil, err
		}
		if res.Next == len(acc) {
			break
		}
		acc = res.Items
	}
	return acc, nil
}

func (c *CLI) items(ctx context.Context, out *Output, ids []string) error {
	products, err := c.fetchItems(ctx, ids)
	if err != nil {
		return err
	}
	return writeProducts(out, products)
}

func (c *CLI) pictures(ctx context.Context, out *Output, id string) error {
	urls, err := c.Catalog.Pictures(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if err := out.Write(func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("url", func(e *jx.Encoder) { e.Str(u) })
			})
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) description(ctx context.Context, out *Output, id string) error {
	raw, err := c.Catalog.Description(ctx, id)
	if err != nil {
		return err
	}
	text, err := catalog.DescriptionText(raw)
	if err != nil {
		return err
	}
	return out.Write(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(id) })
			e.Field("text", func(e *jx.Encoder) { e.Str(text) })
		})
	})
}

func (c *CLI) currency(ctx context.Context, out *Output, code string) error {
	symbol, err := c.Catalog.Currency(ctx, code)
	if err != nil {
		return err
	}
	c.Prices.Store(code, symbol)
	return out.Write(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Str(code) })
			e.Field("symbol", func(e *jx.Encoder) { e.Str(symbol) })
		})
	})
}

func (c *CLI) price(ctx context.Context, out *Output, code, amount string) error {
	v, err := decimal.NewFromString(amount)
	if err != nil {
		return usagef("amount %q: %v", amount, err)
	}
	price := c.Prices.FormatPrice(ctx, code, v.IntPart())
	return out.Write(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Str(code) })
			e.Field("amount", func(e *jx.Encoder) { e.Int64(v.IntPart()) })
			e.Field("price", func(e *jx.Encoder) { e.Str(price) })
		})
	})
}

func writeStrings(out *Output, field string, values []string) error {
	for _, v := range values {
		if err := out.Write(func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field(field, func(e *jx.Encoder) { e.Str(v) })
			})
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) favorites(ctx context.Context, out *Output, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list", "show":
		if len(args) != 0 {
			return usagef("favorites %s takes no arguments", sub)
		}
		ids, err := c.Favorites.Get(ctx)
		if err != nil {
			return err
		}
		if sub == "list" {
			return writeStrings(out, "id", ids)
		}
		if len(ids) == 0 {
			return nil
		}
		products, err := c.fetchItems(ctx, ids)
		if err != nil {
			return err
		}
		return writeProducts(out, products)
	case "add", "remove":
		if len(args) != 1 {
			return usagef("favorites %s takes one item id", sub)
		}
		change := c.Favorites.Add
		if sub == "remove" {
			change = c.Favorites.Remove
		}
		if err := change(ctx, args[0]); err != nil {
			return err
		}
		ids, err := c.Favorites.Get(ctx)
		if err != nil {
			return err
		}
		return writeStrings(out, "id", ids)
	default:
		return usagef("unknown favorites command %q", sub)
	}
}

func (c *CLI) recent(ctx context.Context, out *Output, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		queries, err := c.Recent.List(ctx)
		if err != nil {
			return err
		}
		return writeStrings(out, "query", queries)
	case "add":
		if len(args) != 1 {
			return usagef("recent add takes one query")
		}
		return c.Recent.Add(ctx, args[0])
	default:
		return usagef("unknown recent command %q", sub)
	}
}

func (c *CLI) checkHealth(ctx context.Context, out *Output) error {
	results := c.Health.Run(ctx)
	for _, r := range results {
		if err := out.Write(func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("check", func(e *jx.Encoder) { e.Str(r.Name) })
				e.Field("healthy", func(e *jx.Encoder) { e.Bool(r.Healthy()) })
				e.Field("duration_ms", func(e *jx.Encoder) { e.Int64(r.Duration.Milliseconds()) })
				if r.Err != nil {
					e.Field("error", func(e *jx.Encoder) { e.Str(r.Err.Error()) })
				}
			})
		}); err != nil {
			return err
		}
	}
	if !health.Healthy(results) {
		return ErrUnhealthy
	}
	return nil
}
