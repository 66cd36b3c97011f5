package purchasing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/pipeline"
	"github.com/meridian-erp/meridian/internal/rbac"
	"github.com/meridian-erp/meridian/internal/shared"
	"github.com/meridian-erp/meridian/internal/view"
)

// Handler manages purchasing module endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	rbac      rbac.Middleware
	runner    *pipeline.Runner
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
		rbac:      rbac,
		runner:    &pipeline.Runner{Logger: logger},
	}
}

// MountRoutes registers purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModulePurchasing, shared.VerbView)))
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/new", h.NewOrderForm)
		r.Get("/orders/{id}", h.ShowOrder)
		r.Get("/orders/{id}/edit", h.EditOrderForm)
		r.Get("/suppliers", h.ListSuppliers)
		r.Get("/suppliers/new", h.NewSupplierForm)
		r.Get("/suppliers/{id}/edit", h.EditSupplierForm)
		r.Get("/supplier-types", h.ListTypes)
		r.Get("/supplier-types/new", h.NewTypeForm)
		r.Get("/supplier-types/{id}/edit", h.EditTypeForm)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.Scope(shared.ModulePurchasing, shared.VerbCreate), shared.Scope(shared.ModulePurchasing, shared.VerbUpdate), shared.Scope(shared.ModulePurchasing, shared.VerbDelete)))
		r.Post("/orders", h.CreateOrder)
		r.Post("/orders/delete", h.DeactivateOrder)
		r.Post("/orders/{id}", h.UpdateOrder)
		r.Post("/orders/{id}/delete", h.DeactivateOrder)
		r.Post("/suppliers", h.CreateSupplier)
		r.Post("/suppliers/delete", h.DeleteSupplier)
		r.Post("/suppliers/{id}", h.UpdateSupplier)
		r.Post("/suppliers/{id}/delete", h.DeleteSupplier)
		r.Post("/supplier-types", h.CreateType)
		r.Post("/supplier-types/delete", h.DeleteType)
		r.Post("/supplier-types/{id}", h.UpdateType)
		r.Post("/supplier-types/{id}/delete", h.DeleteType)
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListOrders(r.Context(), filters)
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		http.Error(w, "Failed to load purchase orders", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/purchasing/orders_list.html", map[string]any{
		"Orders":     items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) ShowOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.logger.Error("get purchase order", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.render(w, r, "pages/purchasing/order_detail.html", map[string]any{"Order": order}, http.StatusOK)
}

func (h *Handler) NewOrderForm(w http.ResponseWriter, r *http.Request) {
	h.renderOrderForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditOrderForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.logger.Error("get purchase order", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderOrderForm(w, r, &order, map[string]string{})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[OrderInput]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbCreate,
		Fallback: "/purchasing/orders",
		Parse: func(r *http.Request) (OrderInput, map[string]string, error) {
			in, errs := parseOrderForm(r, nil, false)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in OrderInput) error {
			_, err := h.service.CreateOrder(ctx, actorID, in.Order)
			return err
		},
		Location:     func(OrderInput) string { return "/purchasing/orders" },
		SuccessFlash: "Purchase order created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in OrderInput, errs map[string]string) {
			h.renderOrderForm(w, r, &in.Order, errs)
		},
	})
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[OrderInput]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbUpdate,
		Fallback: "/purchasing/orders",
		Parse: func(r *http.Request) (OrderInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "purchase order")
			if err != nil {
				return OrderInput{}, nil, err
			}
			existing, err := h.service.GetOrder(r.Context(), id)
			if err != nil {
				return OrderInput{}, nil, err
			}
			ps := rbac.PermissionsFromContext(r.Context())
			in, errs := parseOrderForm(r, &existing, ps.Is(shared.RoleSupplier))
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in OrderInput) error {
			return h.service.UpdateOrder(ctx, actorID, in.Order)
		},
		Location: func(in OrderInput) string {
			return "/purchasing/orders/" + strconv.FormatInt(in.ID, 10)
		},
		SuccessFlash: "Purchase order updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in OrderInput, errs map[string]string) {
			h.renderOrderForm(w, r, &in.Order, errs)
		},
	})
}

func (h *Handler) DeactivateOrder(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbDelete,
		Fallback: "/purchasing/orders",
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, "purchase order")
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return h.service.DeactivateOrder(ctx, actorID, id)
		},
		Location:     func(int64) string { return "/purchasing/orders" },
		SuccessFlash: "Purchase order deactivated",
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListSuppliers(r.Context(), filters)
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		http.Error(w, "Failed to load suppliers", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/purchasing/suppliers_list.html", map[string]any{
		"Suppliers":  items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) NewSupplierForm(w http.ResponseWriter, r *http.Request) {
	h.renderSupplierForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditSupplierForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		h.logger.Error("get supplier", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderSupplierForm(w, r, &supplier, map[string]string{})
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[SupplierInput]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbCreate,
		Fallback: "/purchasing/suppliers",
		Parse: func(r *http.Request) (SupplierInput, map[string]string, error) {
			in, errs := parseSupplierForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in SupplierInput) error {
			_, err := h.service.CreateSupplier(ctx, actorID, in.Supplier)
			return err
		},
		Location:     func(SupplierInput) string { return "/purchasing/suppliers" },
		SuccessFlash: "Supplier created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in SupplierInput, errs map[string]string) {
			h.renderSupplierForm(w, r, &in.Supplier, errs)
		},
	})
}

func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[SupplierInput]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbUpdate,
		Fallback: "/purchasing/suppliers",
		Parse: func(r *http.Request) (SupplierInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "supplier")
			if err != nil {
				return SupplierInput{}, nil, err
			}
			in, errs := parseSupplierForm(r)
			in.ID = id
			in.Supplier.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in SupplierInput) error {
			return h.service.UpdateSupplier(ctx, actorID, in.Supplier)
		},
		Location:     func(SupplierInput) string { return "/purchasing/suppliers" },
		SuccessFlash: "Supplier updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in SupplierInput, errs map[string]string) {
			h.renderSupplierForm(w, r, &in.Supplier, errs)
		},
	})
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbDelete,
		Fallback: "/purchasing/suppliers",
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, "supplier")
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return h.service.DeleteSupplier(ctx, actorID, id)
		},
		Location:     func(int64) string { return "/purchasing/suppliers" },
		SuccessFlash: "Supplier deleted",
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListTypes(r.Context(), filters)
	if err != nil {
		h.logger.Error("list supplier types", slog.Any("error", err))
		http.Error(w, "Failed to load supplier types", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/purchasing/types_list.html", map[string]any{
		"Types":      items,
		"Total":      total,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) NewTypeForm(w http.ResponseWriter, r *http.Request) {
	h.renderTypeForm(w, r, nil, map[string]string{})
}

func (h *Handler) EditTypeForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	st, err := h.service.GetType(r.Context(), id)
	if err != nil {
		h.logger.Error("get supplier type", slog.Any("error", err), slog.Int64("id", id))
		http.NotFound(w, r)
		return
	}
	h.renderTypeForm(w, r, &st, map[string]string{})
}

func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[TypeInput]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbCreate,
		Fallback: "/purchasing/supplier-types",
		Parse: func(r *http.Request) (TypeInput, map[string]string, error) {
			in, errs := parseTypeForm(r)
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in TypeInput) error {
			_, err := h.service.CreateType(ctx, actorID, in.Type)
			return err
		},
		Location:     func(TypeInput) string { return "/purchasing/supplier-types" },
		SuccessFlash: "Supplier type created",
		Invalid: func(w http.ResponseWriter, r *http.Request, in TypeInput, errs map[string]string) {
			h.renderTypeForm(w, r, &in.Type, errs)
		},
	})
}

func (h *Handler) UpdateType(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[TypeInput]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbUpdate,
		Fallback: "/purchasing/supplier-types",
		Parse: func(r *http.Request) (TypeInput, map[string]string, error) {
			id, err := pipeline.RequireID(r, "supplier type")
			if err != nil {
				return TypeInput{}, nil, err
			}
			in, errs := parseTypeForm(r)
			in.ID = id
			in.Type.ID = id
			return in, errs, nil
		},
		Mutate: func(ctx context.Context, actorID int64, in TypeInput) error {
			return h.service.UpdateType(ctx, actorID, in.Type)
		},
		Location:     func(TypeInput) string { return "/purchasing/supplier-types" },
		SuccessFlash: "Supplier type updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, in TypeInput, errs map[string]string) {
			h.renderTypeForm(w, r, &in.Type, errs)
		},
	})
}

func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	pipeline.Run(h.runner, w, r, pipeline.Action[int64]{
		Module:   shared.ModulePurchasing,
		Verb:     shared.VerbDelete,
		Fallback: "/purchasing/supplier-types",
		Parse: func(r *http.Request) (int64, map[string]string, error) {
			id, err := pipeline.RequireID(r, "supplier type")
			return id, nil, err
		},
		Mutate: func(ctx context.Context, actorID int64, id int64) error {
			return h.service.DeleteType(ctx, actorID, id)
		},
		Location:     func(int64) string { return "/purchasing/supplier-types" },
		SuccessFlash: "Supplier type deleted",
		Invalid:      func(http.ResponseWriter, *http.Request, int64, map[string]string) {},
	})
}

func (h *Handler) renderOrderForm(w http.ResponseWriter, r *http.Request, order *PurchaseOrder, errs map[string]string) {
	suppliers, _, err := h.service.ListSuppliers(r.Context(), shared.ListFilters{Page: 1, Limit: 200})
	if err != nil {
		h.logger.Warn("load suppliers for order form", slog.Any("error", err))
	}
	locked := rbac.PermissionsFromContext(r.Context()).Is(shared.RoleSupplier)
	h.render(w, r, "pages/purchasing/order_form.html", map[string]any{
		"Order":      order,
		"Errors":     errs,
		"Suppliers":  suppliers,
		"OrderTypes": OrderTypes(),
		"Statuses":   OrderStatuses(),
		"Locked":     locked,
	}, http.StatusOK)
}

func (h *Handler) renderSupplierForm(w http.ResponseWriter, r *http.Request, supplier *Supplier, errs map[string]string) {
	types, _, err := h.service.ListTypes(r.Context(), shared.ListFilters{Page: 1, Limit: 200})
	if err != nil {
		h.logger.Warn("load types for supplier form", slog.Any("error", err))
	}
	h.render(w, r, "pages/purchasing/supplier_form.html", map[string]any{
		"Supplier": supplier,
		"Errors":   errs,
		"Types":    types,
	}, http.StatusOK)
}

func (h *Handler) renderTypeForm(w http.ResponseWriter, r *http.Request, st *SupplierType, errs map[string]string) {
	h.render(w, r, "pages/purchasing/type_form.html", map[string]any{
		"Type":   st,
		"Errors": errs,
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Purchasing",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Perms:       rbac.PermissionsFromContext(r.Context()),
		Filters:     shared.ParseListFilters(r.URL.Query()),
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
