package httpapi

import (
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/service"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves brands, categories and products.
type CatalogHandler struct {
	Base
	brands     *service.BrandService
	categories *service.CategoryService
	products   *service.ProductService
}

func NewCatalogHandler(b Base, brands *service.BrandService, categories *service.CategoryService, products *service.ProductService) *CatalogHandler {
	return &CatalogHandler{Base: b, brands: brands, categories: categories, products: products}
}

// brands

func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	list, err := h.brands.ListBrands(r.Context(), queryTrim(r, "search"))
	if err != nil {
		h.fail(w, r, "ListBrands", err)
		return
	}
	h.ok(w, list)
}

func (h *CatalogHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	b, err := h.brands.GetBrand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetBrand", err)
		return
	}
	h.ok(w, b)
}

func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req service.BrandRequest
	if !h.decode(w, r, "CreateBrand", &req) {
		return
	}
	b, err := h.brands.CreateBrand(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateBrand", err)
		return
	}
	h.created(w, b)
}

func (h *CatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var req service.BrandRequest
	if !h.decode(w, r, "UpdateBrand", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	b, err := h.brands.UpdateBrand(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateBrand", err)
		return
	}
	h.ok(w, b)
}

func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.brands.DeleteBrand(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteBrand", err)
		return
	}
	h.noContent(w)
}

func (h *CatalogHandler) ReorderBrands(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, "ReorderBrands", &req) {
		return
	}
	if err := h.brands.ReorderBrands(r.Context(), req.IDs); err != nil {
		h.fail(w, r, "ReorderBrands", err)
		return
	}
	h.noContent(w)
}

// categories

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.categories.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, "ListCategories", err)
		return
	}
	h.ok(w, list)
}

func (h *CatalogHandler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.categories.CategoryTree(r.Context())
	if err != nil {
		h.fail(w, r, "CategoryTree", err)
		return
	}
	h.ok(w, tree)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetCategory", err)
		return
	}
	h.ok(w, c)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryRequest
	if !h.decode(w, r, "CreateCategory", &req) {
		return
	}
	c, err := h.categories.CreateCategory(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateCategory", err)
		return
	}
	h.created(w, c)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryRequest
	if !h.decode(w, r, "UpdateCategory", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	c, err := h.categories.UpdateCategory(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateCategory", err)
		return
	}
	h.ok(w, c)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteCategory", err)
		return
	}
	h.noContent(w)
}

func (h *CatalogHandler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, "ReorderCategories", &req) {
		return
	}
	if err := h.categories.ReorderCategories(r.Context(), req.IDs); err != nil {
		h.fail(w, r, "ReorderCategories", err)
		return
	}
	h.noContent(w)
}

// products

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	p := readPage(r)
	res, err := h.products.ListProducts(r.Context(), service.ListProductsRequest{
		Search:     queryTrim(r, "search"),
		BrandID:    queryTrim(r, "brand_id"),
		CategoryID: queryTrim(r, "category_id"),
		Active:     parseBool(queryTrim(r, "active")),
		Page:       p.page,
		Size:       p.size,
	})
	if err != nil {
		h.fail(w, r, "ListProducts", err)
		return
	}
	h.ok(w, res)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetProduct", err)
		return
	}
	h.ok(w, p)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductRequest
	if !h.decode(w, r, "CreateProduct", &req) {
		return
	}
	p, err := h.products.CreateProduct(r.Context(), req)
	if err != nil {
		h.fail(w, r, "CreateProduct", err)
		return
	}
	h.created(w, p)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductRequest
	if !h.decode(w, r, "UpdateProduct", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	p, err := h.products.UpdateProduct(r.Context(), req)
	if err != nil {
		h.fail(w, r, "UpdateProduct", err)
		return
	}
	h.ok(w, p)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteProduct", err)
		return
	}
	h.noContent(w)
}
