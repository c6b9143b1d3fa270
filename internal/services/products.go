package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"placement_studio/pkg"
)

// ErrProductNotFound is returned by Lookup for unknown ids
var ErrProductNotFound = errors.New("product not found")

// Targeting holds advertiser preferences for where a product should appear
type Targeting struct {
	Demographics []string `json:"demographics"`
	Interests    []string `json:"interests"`
	Scenes       []string `json:"scenes"`
	Semantic     string   `json:"semantic,omitempty"`
}

// CatalogProduct is a product as stored in products.json
type CatalogProduct struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Img         string     `json:"img"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Targeting   *Targeting `json:"targeting,omitempty"`
}

// Collection is a brand collection of products
type Collection struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Products    []CatalogProduct `json:"products"`
}

// ProductsData is the root of products.json
type ProductsData struct {
	Collections []Collection `json:"collections"`
}

// Pricing is the catalog's price for a product
type Pricing struct {
	Price    float64
	Currency string
}

// ProductService holds the flattened, read-only product catalog
type ProductService struct {
	mu       sync.RWMutex
	products []pkg.ProductInfo
	pricing  map[string]Pricing
	client   *http.Client
}

// NewProductService creates an empty catalog; call Load to fill it
func NewProductService() *ProductService {
	return &ProductService{
		pricing: make(map[string]Pricing),
		client:  http.DefaultClient,
	}
}

// Load reads products.json from a file path or an http(s) URL and replaces the catalog
func (ps *ProductService) Load(ctx context.Context, source string) error {
	raw, err := ps.read(ctx, source)
	if err != nil {
		return err
	}

	var data ProductsData
	if err := sonic.ConfigStd.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse catalog %s: %w", source, err)
	}
	ps.set(data)
	return nil
}

func (ps *ProductService) read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := ps.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}
	return body, nil
}

// set flattens collections into pipeline product descriptions; the brand is the collection's display name
func (ps *ProductService) set(data ProductsData) {
	products := make([]pkg.ProductInfo, 0)
	pricing := make(map[string]Pricing)

	for _, c := range data.Collections {
		brand := c.DisplayName
		if brand == "" {
			brand = c.Name
		}
		for _, p := range c.Products {
			info := pkg.ProductInfo{
				ID:                 p.ID,
				Name:               p.Name,
				Brand:              brand,
				Description:        p.Description,
				ImageURL:           p.Img,
				TargetDemographics: []string{},
				TargetInterests:    []string{},
				ScenePreferences:   []string{},
			}
			if t := p.Targeting; t != nil {
				info.TargetDemographics = nonNil(t.Demographics)
				info.TargetInterests = nonNil(t.Interests)
				info.ScenePreferences = nonNil(t.Scenes)
				info.SemanticFilter = t.Semantic
			}
			products = append(products, info)
			if p.Price > 0 || p.Currency != "" {
				pricing[p.ID] = Pricing{Price: p.Price, Currency: p.Currency}
			}
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.products = products
	ps.pricing = pricing
}

// Products returns a copy of the flattened catalog
func (ps *ProductService) Products() []pkg.ProductInfo {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return slices.Clone(ps.products)
}

// Lookup returns the product with the given id
func (ps *ProductService) Lookup(id string) (pkg.ProductInfo, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, p := range ps.products {
		if p.ID == id {
			return p, nil
		}
	}
	return pkg.ProductInfo{}, fmt.Errorf("%s: %w", id, ErrProductNotFound)
}

// PriceOf returns the catalog price for a product, if the catalog carries one
func (ps *ProductService) PriceOf(id string) (Pricing, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.pricing[id]
	return p, ok
}

// SearchProducts searches for products by query
func (ps *ProductService) SearchProducts(ctx context.Context, query string) []pkg.ProductInfo {
	if query == "" {
		return ps.Products()
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var results []pkg.ProductInfo
	queryLower := strings.ToLower(query)

	for _, product := range ps.products {
		if strings.Contains(strings.ToLower(product.Name), queryLower) ||
			strings.Contains(strings.ToLower(product.Brand), queryLower) ||
			strings.Contains(strings.ToLower(product.Description), queryLower) {
			results = append(results, product)
		}
	}

	return results
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
