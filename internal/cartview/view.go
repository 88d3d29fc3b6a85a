// Package cartview renders a cart into the HTML fragments shown on the cart
// page and in the header badge.
package cartview

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/ikkim/storefront/internal/cart"
	"github.com/ikkim/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// EmptyCartHTML replaces the item list when the cart has no items.
const EmptyCartHTML = `<p class="empty-cart">Your cart is empty. <a href="/shop">Continue shopping</a></p>`

// Source is the read side of a cart. *cart.Store satisfies it.
type Source interface {
	Snapshot() cart.Snapshot
}

// Regions are the rendered parts of the page that depend on the cart.
type Regions struct {
	ItemsHTML template.HTML `json:"itemsHtml"`
	Subtotal  string        `json:"subtotal"`
	Shipping  string        `json:"shipping"`
	Total     string        `json:"total"`
	Count     int           `json:"count"`
	Empty     bool          `json:"empty"`
	// Version is the cart version the regions were rendered from.
	Version uint64 `json:"version"`
}

// Sink receives every re-render.
type Sink interface {
	Push(ctx context.Context, regions Regions)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, regions Regions)

func (f SinkFunc) Push(ctx context.Context, regions Regions) {
	f(ctx, regions)
}

// View re-renders its source whenever the cart changes. It keeps no cart
// state; every render reads the source.
type View struct {
	source Source

	mu    sync.RWMutex
	sinks []Sink
}

func New(source Source, sinks ...Sink) *View {
	return &View{source: source, sinks: sinks}
}

// AddSink registers another receiver for re-renders.
func (v *View) AddSink(s Sink) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sinks = append(v.sinks, s)
}

// Render produces the current regions from one snapshot of the source.
func (v *View) Render() Regions {
	snap := v.source.Snapshot()

	regions := Regions{
		Subtotal: Money(snap.Subtotal),
		Shipping: Money(snap.Shipping),
		Total:    Money(snap.GrandTotal),
		Count:    snap.Count,
		Empty:    len(snap.Items) == 0,
		Version:  snap.Version,
	}
	if regions.Empty {
		regions.ItemsHTML = template.HTML(EmptyCartHTML)
		return regions
	}
	regions.ItemsHTML = renderItems(snap.Items)
	return regions
}

// CartChanged implements cart.Observer.
func (v *View) CartChanged(ctx context.Context, _ []cart.LineItem) {
	regions := v.Render()

	v.mu.RLock()
	sinks := make([]Sink, len(v.sinks))
	copy(sinks, v.sinks)
	v.mu.RUnlock()

	for _, s := range sinks {
		s.Push(ctx, regions)
	}
}

// Money formats an amount as $0.00.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

var itemsTemplate = template.Must(template.New("cart-items").Funcs(template.FuncMap{
	"money": Money,
	"dec":   func(n int) int { return n - 1 },
	"inc":   func(n int) int { return n + 1 },
}).Parse(`{{range .}}<div class="cart-item" data-id="{{.ID}}">
  <div class="cart-item-image"><img src="{{.Image}}" alt="{{.Name}}"></div>
  <div class="cart-item-details">
    <h4 class="cart-item-name">{{.Name}}</h4>
    <p class="cart-item-price">{{money .Price}}</p>
    <div class="cart-item-quantity">
      <form method="post" action="/cart/items/{{.ID}}/quantity"><input type="hidden" name="quantity" value="{{dec .Quantity}}"><button class="quantity-btn" type="submit">-</button></form>
      <span>{{.Quantity}}</span>
      <form method="post" action="/cart/items/{{.ID}}/quantity"><input type="hidden" name="quantity" value="{{inc .Quantity}}"><button class="quantity-btn" type="submit">+</button></form>
    </div>
  </div>
  <form method="post" action="/cart/items/{{.ID}}/remove"><button class="remove-item" type="submit">Remove</button></form>
</div>
{{end}}`))

func renderItems(items []cart.LineItem) template.HTML {
	var buf bytes.Buffer
	if err := itemsTemplate.Execute(&buf, items); err != nil {
		logger.Error("Failed to render cart items", err, map[string]interface{}{
			"count": len(items),
		})
		return ""
	}
	return template.HTML(buf.String())
}

// LastRender keeps the newest regions pushed to it. Renders of an older
// cart version arriving late are dropped.
type LastRender struct {
	mu      sync.RWMutex
	regions Regions
	ok      bool
}

func (l *LastRender) Push(_ context.Context, regions Regions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ok && regions.Version < l.regions.Version {
		return
	}
	l.regions = regions
	l.ok = true
}

// Get returns the cached regions and whether anything was rendered yet.
func (l *LastRender) Get() (Regions, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.regions, l.ok
}
