package catalog

import (
	"strings"
	"time"

	"github.com/hupe1980/procuremesh/logging"
)

// DefaultSynonyms is the fixed product-equivalence table applied by
// SearchProducts. Keys are exact lowercased search terms; values are the
// substring scans to repeat when the key matches.
var DefaultSynonyms = map[string][]string{
	"computer":      {"laptop", "pc", "workstation"},
	"chair":         {"chair", "seat"},
	"printer paper": {"notebook", "paper"},
	"paper":         {"notebook", "paper"},
}

// Options configures a Store at load time.
type Options struct {
	// Ledger supplies spent-this-month figures for budget computation.
	// Defaults to DefaultLedger.
	Ledger SpendLedger
	// Synonyms overrides the product-equivalence table. Defaults to
	// DefaultSynonyms.
	Synonyms map[string][]string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

func defaultOptions() Options {
	return Options{
		Ledger:   DefaultLedger,
		Synonyms: DefaultSynonyms,
		Logger:   logging.NoOpLogger{},
	}
}

// Store holds the five catalog collections keyed by entity id. All
// collections are immutable after Load, so reads are safe for unlimited
// concurrent use without locking.
type Store struct {
	users        map[string]User
	departments  map[string]Department
	products     map[string]Product
	productOrder []string
	suppliers    map[string]Supplier
	offers       map[string][]ProductDetails

	ledger   SpendLedger
	synonyms map[string][]string
	logger   logging.Logger
}

func newStore(opts Options) *Store {
	if opts.Ledger == nil {
		opts.Ledger = DefaultLedger
	}
	if opts.Synonyms == nil {
		opts.Synonyms = DefaultSynonyms
	}
	return &Store{
		users:       make(map[string]User),
		departments: make(map[string]Department),
		products:    make(map[string]Product),
		suppliers:   make(map[string]Supplier),
		offers:      make(map[string][]ProductDetails),
		ledger:      opts.Ledger,
		synonyms:    opts.Synonyms,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(userID string) (User, error) {
	u, ok := s.users[userID]
	if !ok {
		return User{}, notFound("user", userID)
	}
	return u, nil
}

// GetDepartment returns the department with the given id.
func (s *Store) GetDepartment(departmentID string) (Department, error) {
	d, ok := s.departments[departmentID]
	if !ok {
		return Department{}, notFound("department", departmentID)
	}
	return d, nil
}

// GetDepartmentBudget computes the department's current budget position.
// The spent amount comes from the configured SpendLedger and the remainder
// may be negative. LastUpdated is stamped at read time.
func (s *Store) GetDepartmentBudget(departmentID string) (DepartmentBudget, error) {
	d, err := s.GetDepartment(departmentID)
	if err != nil {
		return DepartmentBudget{}, err
	}

	spent := s.ledger.SpentThisMonth(departmentID)

	return DepartmentBudget{
		DepartmentID:    departmentID,
		MonthlyBudget:   d.MonthlyBudget,
		SpentThisMonth:  spent,
		RemainingBudget: d.MonthlyBudget - spent,
		LastUpdated:     time.Now(),
	}, nil
}

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(productID string) (Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return Product{}, notFound("product", productID)
	}
	return p, nil
}

// GetSupplier returns the supplier with the given id.
func (s *Store) GetSupplier(supplierID string) (Supplier, error) {
	sp, ok := s.suppliers[supplierID]
	if !ok {
		return Supplier{}, notFound("supplier", supplierID)
	}
	return sp, nil
}

// GetProductDetails returns the supplier offers for a product in source
// order. A product with zero configured offers yields an empty slice, not an
// error. A non-empty supplierID narrows the result to matching offers.
func (s *Store) GetProductDetails(productID, supplierID string) []ProductDetails {
	details := s.offers[productID]
	if supplierID == "" {
		return append([]ProductDetails(nil), details...)
	}

	filtered := make([]ProductDetails, 0, len(details))
	for _, d := range details {
		if d.SupplierID == supplierID {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// SearchProducts performs a case-insensitive substring search over product
// names and descriptions, in two passes:
//
//  1. Primary pass: every product whose lowercased name or description
//     contains the lowercased term.
//  2. Equivalence pass: when the lowercased term exactly matches a synonym
//     key, the substring scan is repeated for each synonym word, adding any
//     product not already found.
//
// Results keep first-discovery order (catalog source order within each scan)
// with duplicate suppression by product id. No relevance ranking is applied.
func (s *Store) SearchProducts(term string) []Product {
	searchTerm := strings.ToLower(term)

	results := make([]Product, 0)
	seen := make(map[string]bool)

	scan := func(needle string) {
		for _, id := range s.productOrder {
			p := s.products[id]
			if seen[p.ProductID] {
				continue
			}
			if strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle) {
				results = append(results, p)
				seen[p.ProductID] = true
			}
		}
	}

	scan(searchTerm)

	if equivalents, ok := s.synonyms[searchTerm]; ok {
		for _, equivalent := range equivalents {
			scan(equivalent)
		}
	}

	s.logger.Debug("catalog.search", "term", term, "results", len(results))

	return results
}
