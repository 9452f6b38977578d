// Package business exposes the procurement catalog and audit trail as a set
// of named tools. Lookup misses surface as tool-level NOT_FOUND failures the
// execution context can reason about, never as transport errors.
package business

import (
	"errors"
	"fmt"

	"github.com/hupe1980/procuremesh/audit"
	"github.com/hupe1980/procuremesh/catalog"
	"github.com/hupe1980/procuremesh/logging"
	"github.com/hupe1980/procuremesh/tool"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Service bundles the business query tools around a catalog store and an
// audit log.
type Service struct {
	store    *catalog.Store
	auditLog *audit.Log
	logger   logging.Logger
}

// NewService creates a Service over the given store and audit log.
func NewService(store *catalog.Store, auditLog *audit.Log, optFns ...func(o *ServiceOptions)) *Service {
	opts := ServiceOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Service{
		store:    store,
		auditLog: auditLog,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Tool returns the named business query tool.
func (s *Service) Tool(name string) (tool.Tool, bool) {
	for _, t := range s.Tools() {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Tools returns the seven business query tools in a stable order.
func (s *Service) Tools() []tool.Tool {
	return []tool.Tool{
		s.getUserTool(),
		s.getDepartmentPolicyTool(),
		s.getDepartmentBudgetTool(),
		s.searchProductsTool(),
		s.getProductDetailsTool(),
		s.getSupplierInfoTool(),
		s.createAuditRecordTool(),
	}
}

func (s *Service) getUserTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_user",
		"Get user information (name and department) by user ID.",
		objectSchema(map[string]any{
			"user_id": stringProp("The unique identifier of the user"),
		}, "user_id"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			userID := stringArg(args, "user_id")

			user, err := s.store.GetUser(userID)
			if err != nil {
				return nil, asToolError("get_user", err)
			}
			return user, nil
		},
	)
}

func (s *Service) getDepartmentPolicyTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_department_policy",
		"Get the purchasing policy of a department: allowed categories, purchase strategy, monthly budget and audit requirements.",
		objectSchema(map[string]any{
			"department_id": stringProp("The unique identifier of the department"),
		}, "department_id"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			departmentID := stringArg(args, "department_id")

			dept, err := s.store.GetDepartment(departmentID)
			if err != nil {
				return nil, asToolError("get_department_policy", err)
			}
			return dept, nil
		},
	)
}

func (s *Service) getDepartmentBudgetTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_department_budget",
		"Get the current budget status of a department: monthly budget, spent amount and remaining budget. The remaining budget can be negative.",
		objectSchema(map[string]any{
			"department_id": stringProp("The unique identifier of the department"),
		}, "department_id"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			departmentID := stringArg(args, "department_id")

			budget, err := s.store.GetDepartmentBudget(departmentID)
			if err != nil {
				return nil, asToolError("get_department_budget", err)
			}
			return budget, nil
		},
	)
}

func (s *Service) searchProductsTool() tool.Tool {
	return tool.NewFunctionTool(
		"search_products",
		"Search the product catalog by name or description. Matches case-insensitively and expands known equivalent terms. Returns an empty list when nothing matches.",
		objectSchema(map[string]any{
			"name": stringProp("Product name or description to search for, e.g. 'laptop' or 'office chair'"),
		}, "name"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			return s.store.SearchProducts(stringArg(args, "name")), nil
		},
	)
}

func (s *Service) getProductDetailsTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_product_details",
		"Get supplier offers for a product: price, availability, delivery time and minimum order quantity. Optionally filter by supplier ID.",
		objectSchema(map[string]any{
			"product_id":  stringProp("The unique identifier of the product"),
			"supplier_id": stringProp("Optional supplier ID to narrow the offers"),
		}, "product_id"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			productID := stringArg(args, "product_id")
			supplierID := stringArg(args, "supplier_id")

			details := s.store.GetProductDetails(productID, supplierID)
			if len(details) == 0 {
				return nil, tool.NewToolError(
					"get_product_details",
					fmt.Sprintf("no product details found for product %s", productID),
					tool.CodeNotFound,
				)
			}
			return details, nil
		},
	)
}

func (s *Service) getSupplierInfoTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_supplier_info",
		"Get supplier information by supplier ID: name, reliability score and contact info.",
		objectSchema(map[string]any{
			"supplier_id": stringProp("The unique identifier of the supplier"),
		}, "supplier_id"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			supplierID := stringArg(args, "supplier_id")

			supplier, err := s.store.GetSupplier(supplierID)
			if err != nil {
				return nil, asToolError("get_supplier_info", err)
			}
			return supplier, nil
		},
	)
}

func (s *Service) createAuditRecordTool() tool.Tool {
	return tool.NewFunctionTool(
		"create_audit_record",
		"Create an audit record for a purchase decision. Use this for departments whose policy requires auditing.",
		objectSchema(map[string]any{
			"user_id":            stringProp("ID of the user the decision was made for"),
			"action":             stringProp("Action taken, e.g. 'purchase_approved' or 'purchase_denied'"),
			"details":            map[string]any{"type": "object", "description": "Structured decision details"},
			"decision_reasoning": stringProp("Optional reasoning behind the decision"),
		}, "user_id", "action"),
		func(callCtx *tool.CallContext, args map[string]any) (any, error) {
			details, _ := args["details"].(map[string]any)

			rec := s.auditLog.Append(
				stringArg(args, "user_id"),
				stringArg(args, "action"),
				details,
				stringArg(args, "decision_reasoning"),
			)

			s.logger.Info("audit.record.created", "record_id", rec.ID, "user_id", rec.UserID, "action", rec.Action)

			return rec, nil
		},
	)
}

// asToolError converts catalog lookup misses into tool-level NOT_FOUND
// failures. Anything else passes through and becomes an execution error.
func asToolError(toolName string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return tool.NewToolError(toolName, err.Error(), tool.CodeNotFound)
	}
	return err
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}
