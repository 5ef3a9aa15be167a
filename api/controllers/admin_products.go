package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tommiesfashion/storefront-backend/api/responses"
	"github.com/tommiesfashion/storefront-backend/api/validators"
	productsvc "github.com/tommiesfashion/storefront-backend/internal/products"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
)

type createProductRequest struct {
	ProductName   string          `json:"product_name" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Size          string          `json:"size"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	ImageURLs     []string        `json:"image_urls,omitempty"`
	Description   *string         `json:"description,omitempty"`
}

type updateProductRequest struct {
	ProductName   *string          `json:"product_name,omitempty" validate:"omitempty,min=1"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,min=1"`
	Size          *string          `json:"size,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	ImageURLs     []string         `json:"image_urls,omitempty"`
	Description   *string          `json:"description,omitempty"`
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductDTO{
			ProductName:   body.ProductName,
			Category:      body.Category,
			Size:          body.Size,
			Price:         body.Price,
			StockQuantity: body.StockQuantity,
			ImageURLs:     body.ImageURLs,
			Description:   body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductDTO{
			ProductName:   body.ProductName,
			Category:      body.Category,
			Size:          body.Size,
			Price:         body.Price,
			StockQuantity: body.StockQuantity,
			ImageURLs:     body.ImageURLs,
			Description:   body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
