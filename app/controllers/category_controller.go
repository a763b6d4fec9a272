package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/bind"
	"github.com/gmcandra/mebelshop/pkg/response"
)

type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalog.Categories()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "categories unavailable")
		return
	}
	response.Success(w, categories)
}

func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	var body services.CategoryInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.catalog.CreateCategory(r.Context(), body)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "create category failed")
		return
	}
	response.Created(w, category)
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var body services.CategoryInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.catalog.UpdateCategory(r.Context(), id, body)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "update category failed")
		return
	}
	response.Success(w, category)
}

func (c *CategoryController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := c.catalog.DeleteCategory(r.Context(), id); err != nil {
		response.Error(w, http.StatusInternalServerError, "delete category failed")
		return
	}
	response.Success(w, map[string]string{"message": "category deleted"})
}
