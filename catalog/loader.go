package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// Source file names the loader expects inside the data directory. The
// documents use the camelCase keys of the upstream data exports.
const (
	usersFile          = "users.json"
	departmentsFile    = "departments.json"
	productsFile       = "products.json"
	suppliersFile      = "suppliers.json"
	productDetailsFile = "product_details.json"
)

// Raw document shapes. Pointer fields distinguish "absent" from zero values
// so the loader can reject missing required fields instead of silently
// defaulting them.

type rawUser struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	DepartmentID string `json:"departmentId"`
}

type rawDepartment struct {
	DepartmentID      string   `json:"departmentId"`
	Name              string   `json:"name"`
	AllowedCategories []string `json:"allowedCategories"`
	PurchaseStrategy  string   `json:"purchaseStrategy"`
	MonthlyBudget     *float64 `json:"monthlyBudget"`
	RequiresAudit     bool     `json:"requiresAudit"`
}

type rawProduct struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type rawSupplier struct {
	SupplierID       string   `json:"supplierId"`
	Name             string   `json:"name"`
	ReliabilityScore *float64 `json:"reliabilityScore"`
	ContactInfo      string   `json:"contactInfo"`
}

type rawProductDetails struct {
	ProductID    string   `json:"productId"`
	SupplierID   string   `json:"supplierId"`
	Price        *float64 `json:"price"`
	Availability string   `json:"availability"`
	DeliveryDays *int     `json:"deliveryDays"`
	MinimumOrder *int     `json:"minimumOrder"`
}

// Load reads all five catalog collections from fsys, validates every record
// and returns a ready Store. Any missing source file or malformed record
// fails the whole load: a broken catalog is an unrecoverable startup error,
// not a per-query condition.
func Load(fsys fs.FS, optFns ...func(o *Options)) (*Store, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	s := newStore(opts)

	if err := loadDepartments(fsys, s); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := loadUsers(fsys, s); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := loadProducts(fsys, s); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := loadSuppliers(fsys, s); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := loadProductDetails(fsys, s); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	s.logger.Info("catalog.loaded",
		"users", len(s.users),
		"departments", len(s.departments),
		"products", len(s.products),
		"suppliers", len(s.suppliers),
	)

	return s, nil
}

// LoadDir is a convenience wrapper over Load using the local filesystem.
func LoadDir(dir string, optFns ...func(o *Options)) (*Store, error) {
	return Load(os.DirFS(dir), optFns...)
}

func decodeFile[T any](fsys fs.FS, name string) ([]T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func loadDepartments(fsys fs.FS, s *Store) error {
	raws, err := decodeFile[rawDepartment](fsys, departmentsFile)
	if err != nil {
		return err
	}
	for i, r := range raws {
		switch {
		case r.DepartmentID == "":
			return fmt.Errorf("%s: record %d: missing departmentId", departmentsFile, i)
		case r.Name == "":
			return fmt.Errorf("%s: department %q: missing name", departmentsFile, r.DepartmentID)
		case len(r.AllowedCategories) == 0:
			return fmt.Errorf("%s: department %q: missing allowedCategories", departmentsFile, r.DepartmentID)
		case !PurchaseStrategy(r.PurchaseStrategy).Valid():
			return fmt.Errorf("%s: department %q: unknown purchaseStrategy %q", departmentsFile, r.DepartmentID, r.PurchaseStrategy)
		case r.MonthlyBudget == nil || *r.MonthlyBudget < 0:
			return fmt.Errorf("%s: department %q: monthlyBudget must be present and >= 0", departmentsFile, r.DepartmentID)
		}
		if _, dup := s.departments[r.DepartmentID]; dup {
			return fmt.Errorf("%s: duplicate department id %q", departmentsFile, r.DepartmentID)
		}
		s.departments[r.DepartmentID] = Department{
			DepartmentID:      r.DepartmentID,
			Name:              r.Name,
			AllowedCategories: append([]string(nil), r.AllowedCategories...),
			PurchaseStrategy:  PurchaseStrategy(r.PurchaseStrategy),
			MonthlyBudget:     *r.MonthlyBudget,
			RequiresAudit:     r.RequiresAudit,
		}
	}
	return nil
}

func loadUsers(fsys fs.FS, s *Store) error {
	raws, err := decodeFile[rawUser](fsys, usersFile)
	if err != nil {
		return err
	}
	for i, r := range raws {
		switch {
		case r.UserID == "":
			return fmt.Errorf("%s: record %d: missing userId", usersFile, i)
		case r.Name == "":
			return fmt.Errorf("%s: user %q: missing name", usersFile, r.UserID)
		case r.DepartmentID == "":
			return fmt.Errorf("%s: user %q: missing departmentId", usersFile, r.UserID)
		}
		if _, ok := s.departments[r.DepartmentID]; !ok {
			return fmt.Errorf("%s: user %q: unknown departmentId %q", usersFile, r.UserID, r.DepartmentID)
		}
		if _, dup := s.users[r.UserID]; dup {
			return fmt.Errorf("%s: duplicate user id %q", usersFile, r.UserID)
		}
		s.users[r.UserID] = User{UserID: r.UserID, Name: r.Name, DepartmentID: r.DepartmentID}
	}
	return nil
}

func loadProducts(fsys fs.FS, s *Store) error {
	raws, err := decodeFile[rawProduct](fsys, productsFile)
	if err != nil {
		return err
	}
	for i, r := range raws {
		switch {
		case r.ProductID == "":
			return fmt.Errorf("%s: record %d: missing productId", productsFile, i)
		case r.Name == "":
			return fmt.Errorf("%s: product %q: missing name", productsFile, r.ProductID)
		case r.Category == "":
			return fmt.Errorf("%s: product %q: missing category", productsFile, r.ProductID)
		}
		if _, dup := s.products[r.ProductID]; dup {
			return fmt.Errorf("%s: duplicate product id %q", productsFile, r.ProductID)
		}
		s.products[r.ProductID] = Product{
			ProductID:   r.ProductID,
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
		}
		// productOrder preserves source order so search results are deterministic.
		s.productOrder = append(s.productOrder, r.ProductID)
	}
	return nil
}

func loadSuppliers(fsys fs.FS, s *Store) error {
	raws, err := decodeFile[rawSupplier](fsys, suppliersFile)
	if err != nil {
		return err
	}
	for i, r := range raws {
		if r.SupplierID == "" {
			return fmt.Errorf("%s: record %d: missing supplierId", suppliersFile, i)
		}
		if r.Name == "" {
			return fmt.Errorf("%s: supplier %q: missing name", suppliersFile, r.SupplierID)
		}
		score := 7.0
		if r.ReliabilityScore != nil {
			score = *r.ReliabilityScore
		}
		if score < 0 || score > 10 {
			return fmt.Errorf("%s: supplier %q: reliabilityScore %v outside 0-10", suppliersFile, r.SupplierID, score)
		}
		if _, dup := s.suppliers[r.SupplierID]; dup {
			return fmt.Errorf("%s: duplicate supplier id %q", suppliersFile, r.SupplierID)
		}
		s.suppliers[r.SupplierID] = Supplier{
			SupplierID:       r.SupplierID,
			Name:             r.Name,
			ReliabilityScore: score,
			ContactInfo:      r.ContactInfo,
		}
	}
	return nil
}

func loadProductDetails(fsys fs.FS, s *Store) error {
	raws, err := decodeFile[rawProductDetails](fsys, productDetailsFile)
	if err != nil {
		return err
	}
	for i, r := range raws {
		switch {
		case r.ProductID == "":
			return fmt.Errorf("%s: record %d: missing productId", productDetailsFile, i)
		case r.SupplierID == "":
			return fmt.Errorf("%s: record %d: missing supplierId", productDetailsFile, i)
		case r.Price == nil || *r.Price < 0:
			return fmt.Errorf("%s: offer %s/%s: price must be present and >= 0", productDetailsFile, r.ProductID, r.SupplierID)
		case r.DeliveryDays == nil || *r.DeliveryDays < 0:
			return fmt.Errorf("%s: offer %s/%s: deliveryDays must be present and >= 0", productDetailsFile, r.ProductID, r.SupplierID)
		}
		if _, ok := s.products[r.ProductID]; !ok {
			return fmt.Errorf("%s: offer %d: unknown productId %q", productDetailsFile, i, r.ProductID)
		}
		if _, ok := s.suppliers[r.SupplierID]; !ok {
			return fmt.Errorf("%s: offer %d: unknown supplierId %q", productDetailsFile, i, r.SupplierID)
		}
		minOrder := 1
		if r.MinimumOrder != nil {
			minOrder = *r.MinimumOrder
		}
		if minOrder < 1 {
			return fmt.Errorf("%s: offer %s/%s: minimumOrder must be >= 1", productDetailsFile, r.ProductID, r.SupplierID)
		}
		s.offers[r.ProductID] = append(s.offers[r.ProductID], ProductDetails{
			ProductID:    r.ProductID,
			SupplierID:   r.SupplierID,
			Price:        *r.Price,
			Availability: r.Availability,
			DeliveryDays: *r.DeliveryDays,
			MinimumOrder: minOrder,
		})
	}
	return nil
}
