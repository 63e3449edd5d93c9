package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vango-dev/suspense/pkg/render"
	"github.com/vango-dev/suspense/pkg/resource"
	"github.com/vango-dev/suspense/pkg/vdom"
)

// The built-in catalog page rendered by "render" and served by "serve".
// Product queries are delayed so that the page exercises waiting,
// deduplication and client-only fallbacks.

type product struct {
	Name  string
	Price int // cents
}

// supportedLanguages are the page languages, default first.
var supportedLanguages = []language.Tag{language.English, language.German, language.French}

var languageMatcher = language.NewMatcher(supportedLanguages)

// theme is read by the product list to pick its class.
var theme = vdom.CreateContext("theme", "light")

// locale carries the printer used for numbers and prices.
var locale = vdom.CreateContext("locale", message.NewPrinter(language.English))

func fetchProducts(store *catalogStore, delay time.Duration) func(context.Context) ([]product, error) {
	return func(ctx context.Context) ([]product, error) {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return store.Products(ctx)
	}
}

func productList(cache *resource.Cache, store *catalogStore, delay time.Duration) vdom.Component {
	return vdom.Func(func(s vdom.Scope) (*vdom.VNode, error) {
		items, err := resource.Load(cache, "products", fetchProducts(store, delay),
			resource.WithRetry(2, 50*time.Millisecond)).Read()
		if err != nil {
			return nil, err
		}
		p := locale.Use(s)
		return vdom.Ul(vdom.Class("products", theme.Use(s)),
			vdom.Range(items, func(item product, _ int) *vdom.VNode {
				return vdom.Li(vdom.Key(item.Name),
					vdom.Strong(item.Name), " ",
					vdom.Span(vdom.Class("price"), formatPrice(p, item.Price)))
			}),
		), nil
	})
}

func productCount(cache *resource.Cache, store *catalogStore, delay time.Duration) vdom.Component {
	return vdom.Func(func(s vdom.Scope) (*vdom.VNode, error) {
		items, err := resource.Load(cache, "products", fetchProducts(store, delay)).Read()
		if err != nil {
			return nil, err
		}
		return vdom.Small(locale.Use(s).Sprintf("%d products", len(items))), nil
	})
}

func storeMap(cache *resource.Cache) vdom.Component {
	return vdom.Func(func(vdom.Scope) (*vdom.VNode, error) {
		if _, err := resource.Load(cache, "store-map", func(context.Context) (string, error) {
			return "", nil
		}, resource.WithClientOnly()).Read(); err != nil {
			return nil, err
		}
		return vdom.Div(vdom.ID("map")), nil
	})
}

// footer is a templ component embedded as a leaf.
func footer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<footer><small>Prices include VAT</small></footer>")
		return err
	})
}

// formatPrice formats cents as a euro amount for the printer's language.
func formatPrice(p *message.Printer, cents int) string {
	return p.Sprint(currency.Symbol(currency.EUR.Amount(float64(cents) / 100)))
}

// matchLanguage picks the best supported language for the given
// preferences, which may be a single tag or an Accept-Language value.
func matchLanguage(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, pref := range prefs {
		if strings.TrimSpace(pref) == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	_, index, _ := languageMatcher.Match(tags...)
	return supportedLanguages[index]
}

// catalog returns the document shell and body of the catalog page.
func catalog(cache *resource.Cache, store *catalogStore, lang language.Tag, delay time.Duration) (render.Page, *vdom.VNode) {
	page := render.Page{
		Title: "Catalog",
		Lang:  lang.String(),
		Meta:  []render.MetaTag{{Name: "description", Content: "Coffee equipment"}},
	}
	body := locale.Provider(message.NewPrinter(lang),
		theme.Provider("dark",
			vdom.Main(
				vdom.Header(vdom.H1("Catalog"),
					vdom.Suspense(vdom.Small("counting…"), productCount(cache, store, delay))),
				vdom.Suspense(vdom.P(vdom.AriaBusy(true), "Loading products…"),
					productList(cache, store, delay)),
				vdom.Section(vdom.Class("stores"),
					vdom.Suspense(vdom.P("The store map loads in your browser."), storeMap(cache))),
				vdom.Templ(footer()),
			),
		),
	)
	return page, body
}

// catalogPage serves the catalog. The ?delay= query parameter overrides
// the query latency and ?lang= overrides Accept-Language.
func catalogPage(store *catalogStore, delay time.Duration) func(*http.Request, *resource.Cache) (render.Page, *vdom.VNode, error) {
	return func(r *http.Request, cache *resource.Cache) (render.Page, *vdom.VNode, error) {
		d := delay
		if v := r.URL.Query().Get("delay"); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return render.Page{}, nil, fmt.Errorf("invalid delay %q: %w", v, err)
			}
			d = parsed
		}
		lang := matchLanguage(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		page, body := catalog(cache, store, lang, d)
		return page, body, nil
	}
}
