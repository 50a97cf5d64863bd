package httpapi

import (
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// idParam restricts the id segment to a UUID so a malformed id is an unknown route.
const idParam = "{id:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}}"

// Router wraps a chi mux; each Register* call adds one area of the API.
type Router struct {
	mux    *chi.Mux
	auth   Authenticator
	logger *zap.Logger
}

// NewRouter installs the shared middleware.
func NewRouter(auth Authenticator, corsOrigins []string, logger *zap.Logger) *Router {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(accessLog(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(corsHandler(corsOrigins))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Fail("route not found"))
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Fail("method not allowed"))
	})

	return &Router{mux: mux, auth: auth, logger: logger}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// authed runs fn on a group behind requireAuth and the optional role gate.
func (r *Router) authed(fn func(g chi.Router), roles ...domain.Role) {
	r.mux.Group(func(g chi.Router) {
		g.Use(requireAuth(r.auth, r.logger))
		if len(roles) > 0 {
			g.Use(requireRole(roles...))
		}
		fn(g)
	})
}

func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.mux.Get("/healthz", h.Live)
	r.mux.Get("/readyz", h.Ready)
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.mux.Post("/api/auth/login", h.Login)
	r.mux.Post("/api/auth/logout", h.Logout)
	r.authed(func(g chi.Router) {
		g.Get("/api/auth/me", h.Me)
		g.Post("/api/auth/change-password", h.ChangePassword)
	})
}

func (r *Router) RegisterUserRoutes(h *UserHandler) {
	r.authed(func(g chi.Router) {
		g.Route("/api/users", func(g chi.Router) {
			g.Get("/", h.List)
			g.Post("/", h.Create)
			g.Get("/"+idParam, h.Get)
			g.Put("/"+idParam, h.Update)
			g.Delete("/"+idParam, h.Delete)
		})
	}, domain.RoleAdmin)
}

func (r *Router) RegisterCustomerRoutes(h *CustomerHandler) {
	r.authed(func(g chi.Router) {
		g.Route("/api/customers", func(g chi.Router) {
			g.Get("/", h.List)
			g.Post("/", h.Create)
			g.Get("/export.xlsx", h.Export)
			g.Get("/"+idParam, h.Get)
			g.Put("/"+idParam, h.Update)
			g.Delete("/"+idParam, h.Delete)
		})
	})
}

// RegisterCatalogRoutes: reads are open to any user, writes need ADMIN or MANAGER.
func (r *Router) RegisterCatalogRoutes(h *CatalogHandler) {
	r.authed(func(g chi.Router) {
		g.Get("/api/brands", h.ListBrands)
		g.Get("/api/brands/"+idParam, h.GetBrand)
		g.Get("/api/categories", h.ListCategories)
		g.Get("/api/categories/tree", h.CategoryTree)
		g.Get("/api/categories/"+idParam, h.GetCategory)
		g.Get("/api/products", h.ListProducts)
		g.Get("/api/products/"+idParam, h.GetProduct)
	})
	r.authed(func(g chi.Router) {
		g.Post("/api/brands", h.CreateBrand)
		g.Post("/api/brands/reorder", h.ReorderBrands)
		g.Put("/api/brands/"+idParam, h.UpdateBrand)
		g.Delete("/api/brands/"+idParam, h.DeleteBrand)

		g.Post("/api/categories", h.CreateCategory)
		g.Post("/api/categories/reorder", h.ReorderCategories)
		g.Put("/api/categories/"+idParam, h.UpdateCategory)
		g.Delete("/api/categories/"+idParam, h.DeleteCategory)

		g.Post("/api/products", h.CreateProduct)
		g.Put("/api/products/"+idParam, h.UpdateProduct)
		g.Delete("/api/products/"+idParam, h.DeleteProduct)
	}, domain.RoleAdmin, domain.RoleManager)
}

func (r *Router) RegisterMenuRoutes(h *MenuHandler) {
	r.authed(func(g chi.Router) {
		g.Get("/api/menu", h.Menu)
	})
	r.authed(func(g chi.Router) {
		g.Get("/api/menu/groups", h.ListGroups)
		g.Post("/api/menu/groups", h.CreateGroup)
		g.Post("/api/menu/groups/reorder", h.ReorderGroups)
		g.Put("/api/menu/groups/"+idParam, h.UpdateGroup)
		g.Delete("/api/menu/groups/"+idParam, h.DeleteGroup)

		g.Get("/api/menu/items", h.ListItems)
		g.Post("/api/menu/items", h.CreateItem)
		g.Post("/api/menu/items/reorder", h.ReorderItems)
		g.Put("/api/menu/items/"+idParam, h.UpdateItem)
		g.Delete("/api/menu/items/"+idParam, h.DeleteItem)
	}, domain.RoleAdmin)
}

func (r *Router) RegisterLeadRoutes(h *LeadHandler) {
	r.authed(func(g chi.Router) {
		g.Route("/api/leads", func(g chi.Router) {
			g.Get("/", h.List)
			g.Post("/", h.Create)
			g.Get("/"+idParam, h.Get)
			g.Put("/"+idParam, h.Update)
			g.Delete("/"+idParam, h.Delete)
			g.Patch("/"+idParam+"/status", h.UpdateStatus)
			g.Post("/"+idParam+"/site-survey", h.CreateSurvey)
		})
	})
}

func (r *Router) RegisterSiteSurveyRoutes(h *SiteSurveyHandler) {
	r.authed(func(g chi.Router) {
		g.Route("/api/site-surveys", func(g chi.Router) {
			g.Get("/", h.List)
			g.Post("/", h.Create)
			g.Get("/"+idParam, h.Get)
			g.Put("/"+idParam, h.Update)
			g.Delete("/"+idParam, h.Delete)
			g.Patch("/"+idParam+"/status", h.UpdateStatus)

			g.Get("/"+idParam+"/cabling", h.GetCabling)
			g.Put("/"+idParam+"/cabling", h.SaveCabling)
			g.Get("/"+idParam+"/bom", h.BOM)
			g.Get("/"+idParam+"/bom.xlsx", h.BOMWorkbook)
			g.Post("/"+idParam+"/bom/publish", h.PublishBOM)
			g.Get("/"+idParam+"/proposal.docx", h.Proposal)
			g.Post("/"+idParam+"/proposal", h.PublishProposal)
			g.Get("/"+idParam+"/documents", h.Documents)
		})
	})
}

func (r *Router) RegisterUploadRoutes(h *UploadHandler) {
	r.authed(func(g chi.Router) {
		g.Post("/api/uploads", h.Upload)
		g.Delete("/api/uploads", h.Delete)
	})
}

func (r *Router) RegisterEmailRoutes(h *EmailHandler) {
	r.authed(func(g chi.Router) {
		g.Post("/api/emails/send", h.Send)
		g.Get("/api/emails", h.List)
		g.Get("/api/emails/inbox", h.Inbox)
		g.Get("/api/emails/inbox/{messageId}", h.Message)
	})
	r.authed(func(g chi.Router) {
		g.Get("/api/graph/users", h.DirectoryUsers)
	}, domain.RoleAdmin)
}
