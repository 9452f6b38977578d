package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFixture() fstest.MapFS {
	return fstest.MapFS{
		"users.json": &fstest.MapFile{Data: []byte(`[
			{"userId": "u1", "name": "User One", "departmentId": "d1"}
		]`)},
		"departments.json": &fstest.MapFile{Data: []byte(`[
			{"departmentId": "d1", "name": "Dept One", "allowedCategories": ["electronics"],
			 "purchaseStrategy": "cheapest", "monthlyBudget": 1000.0}
		]`)},
		"products.json": &fstest.MapFile{Data: []byte(`[
			{"productId": "p1", "name": "Prod One", "description": "first", "category": "electronics"}
		]`)},
		"suppliers.json": &fstest.MapFile{Data: []byte(`[
			{"supplierId": "s1", "name": "Supp One", "reliabilityScore": 8.0}
		]`)},
		"product_details.json": &fstest.MapFile{Data: []byte(`[
			{"productId": "p1", "supplierId": "s1", "price": 10.0, "availability": "in_stock", "deliveryDays": 3}
		]`)},
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(validFixture())
	require.NoError(t, err)

	u, err := s.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "d1", u.DepartmentID)

	details := s.GetProductDetails("p1", "")
	require.Len(t, details, 1)
	assert.Equal(t, 1, details[0].MinimumOrder)
}

func TestLoadMissingFile(t *testing.T) {
	fsys := validFixture()
	delete(fsys, "products.json")

	_, err := Load(fsys)
	require.Error(t, err)
	assert.ErrorContains(t, err, "products.json")
}

func TestLoadMalformedJSON(t *testing.T) {
	fsys := validFixture()
	fsys["users.json"] = &fstest.MapFile{Data: []byte(`{not json`)}

	_, err := Load(fsys)
	require.Error(t, err)
	assert.ErrorContains(t, err, "users.json")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr string
	}{
		{
			name:    "UserMissingID",
			file:    "users.json",
			data:    `[{"name": "No ID", "departmentId": "d1"}]`,
			wantErr: "missing userId",
		},
		{
			name:    "UserUnknownDepartment",
			file:    "users.json",
			data:    `[{"userId": "u9", "name": "Orphan", "departmentId": "nope"}]`,
			wantErr: `unknown departmentId "nope"`,
		},
		{
			name: "DuplicateUser",
			file: "users.json",
			data: `[{"userId": "u1", "name": "A", "departmentId": "d1"},
			        {"userId": "u1", "name": "B", "departmentId": "d1"}]`,
			wantErr: "duplicate user id",
		},
		{
			name: "DepartmentBadStrategy",
			file: "departments.json",
			data: `[{"departmentId": "d1", "name": "D", "allowedCategories": ["x"],
			         "purchaseStrategy": "greedy", "monthlyBudget": 10}]`,
			wantErr: `unknown purchaseStrategy "greedy"`,
		},
		{
			name: "DepartmentMissingBudget",
			file: "departments.json",
			data: `[{"departmentId": "d1", "name": "D", "allowedCategories": ["x"],
			         "purchaseStrategy": "cheapest"}]`,
			wantErr: "monthlyBudget",
		},
		{
			name: "DepartmentNegativeBudget",
			file: "departments.json",
			data: `[{"departmentId": "d1", "name": "D", "allowedCategories": ["x"],
			         "purchaseStrategy": "cheapest", "monthlyBudget": -5}]`,
			wantErr: "monthlyBudget",
		},
		{
			name:    "ProductMissingCategory",
			file:    "products.json",
			data:    `[{"productId": "p1", "name": "P", "description": "d"}]`,
			wantErr: "missing category",
		},
		{
			name:    "SupplierScoreOutOfRange",
			file:    "suppliers.json",
			data:    `[{"supplierId": "s1", "name": "S", "reliabilityScore": 11}]`,
			wantErr: "outside 0-10",
		},
		{
			name:    "OfferUnknownProduct",
			file:    "product_details.json",
			data:    `[{"productId": "nope", "supplierId": "s1", "price": 1, "deliveryDays": 1}]`,
			wantErr: `unknown productId "nope"`,
		},
		{
			name:    "OfferUnknownSupplier",
			file:    "product_details.json",
			data:    `[{"productId": "p1", "supplierId": "nope", "price": 1, "deliveryDays": 1}]`,
			wantErr: `unknown supplierId "nope"`,
		},
		{
			name:    "OfferMissingPrice",
			file:    "product_details.json",
			data:    `[{"productId": "p1", "supplierId": "s1", "deliveryDays": 1}]`,
			wantErr: "price",
		},
		{
			name:    "OfferZeroMinimumOrder",
			file:    "product_details.json",
			data:    `[{"productId": "p1", "supplierId": "s1", "price": 1, "deliveryDays": 1, "minimumOrder": 0}]`,
			wantErr: "minimumOrder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := validFixture()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}

			_, err := Load(fsys)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
