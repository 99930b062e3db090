package controllers

import (
	"net/http"

	"github.com/luciagrant/mercadito-backend/api/responses"
	"github.com/luciagrant/mercadito-backend/api/validators"
	usersvc "github.com/luciagrant/mercadito-backend/internal/users"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
)

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register creates a customer account and returns a fresh token.
func Register(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload usersvc.RegisterInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, authResponse{
			Token: result.Token,
			User:  newUserResponse(result.User),
		})
	}
}

// Login authenticates an account and returns a fresh token.
func Login(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload usersvc.LoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, authResponse{
			Token: result.Token,
			User:  newUserResponse(result.User),
		})
	}
}
