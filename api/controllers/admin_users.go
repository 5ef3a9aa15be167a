package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/tommiesfashion/storefront-backend/api/responses"
	"github.com/tommiesfashion/storefront-backend/api/validators"
	usersvc "github.com/tommiesfashion/storefront-backend/internal/users"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/pagination"
)

type adminUpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func AdminListUsers(repo *usersvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := repo.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}

		out := make([]usersvc.UserDTO, 0, len(rows))
		for i := range rows {
			out = append(out, *usersvc.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"users": out, "next_cursor": next})
	}
}

func AdminGetUser(repo *usersvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapUserRepoError(err))
			return
		}

		responses.WriteSuccess(w, usersvc.FromModel(user))
	}
}

func AdminUpdateUser(repo *usersvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adminUpdateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto := usersvc.UpdateUserDTO{
			FullName: body.FullName,
			Phone:    body.Phone,
			Address:  body.Address,
		}
		if body.Role != nil {
			role, err := enums.ParseUserRole(strings.TrimSpace(*body.Role))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			dto.Role = &role
		}

		user, err := repo.Update(r.Context(), id, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapUserRepoError(err))
			return
		}

		responses.WriteSuccess(w, usersvc.FromModel(user))
	}
}

func AdminDeleteUser(repo *usersvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, mapUserRepoError(err))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func mapUserRepoError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user repository")
}
