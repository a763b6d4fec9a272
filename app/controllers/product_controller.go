package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/response"
	"github.com/gmcandra/mebelshop/pkg/validate"
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index lists the catalog, optionally filtered with ?category=<slug>.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	products, pagination, err := c.catalog.Products(r.URL.Query().Get("category"), page, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	response.Paginated(w, products, pagination)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := c.catalog.Product(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	response.Success(w, product)
}

// Search runs a fuzzy catalog search with ?q=.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		response.Error(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	products, err := c.catalog.Search(q, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "search unavailable")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	response.Success(w, products)
}

// productInput parses either a JSON body or a multipart form (when an
// image rides along) into a ProductInput.
func productInput(r *http.Request) (services.ProductInput, []byte, string, map[string]string, error) {
	var in services.ProductInput

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return in, nil, "", nil, err
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))
	categoryID, _ := strconv.ParseUint(r.FormValue("category_id"), 10, 32)

	in = services.ProductInput{
		SKU:         r.FormValue("sku"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Stock:       stock,
		CategoryID:  uint(categoryID),
	}

	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return in, nil, "", errs, nil
	}

	image, imageName, err := imageUpload(r, 8<<20)
	if err != nil {
		return in, nil, "", nil, err
	}
	return in, image, imageName, nil, nil
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	in, image, imageName, errs, err := productInput(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product payload")
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.catalog.CreateProduct(r.Context(), in, image, imageName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(w, http.StatusUnprocessableEntity, "unknown category")
			return
		}
		response.Error(w, http.StatusInternalServerError, "create product failed")
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	in, image, imageName, errs, err := productInput(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product payload")
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.catalog.UpdateProduct(r.Context(), id, in, image, imageName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "update product failed")
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := c.catalog.DeleteProduct(r.Context(), id); err != nil {
		response.Error(w, http.StatusInternalServerError, "delete product failed")
		return
	}
	response.Success(w, map[string]string{"message": "product deleted"})
}
