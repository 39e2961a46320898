// Package storefront serves the booking page and its JSON API.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/hovr/booking-site/internal/booking"
	"bitbucket.org/hovr/booking-site/internal/page"
	"bitbucket.org/hovr/booking-site/internal/quote"
	"bitbucket.org/hovr/booking-site/internal/schema"
	"bitbucket.org/hovr/booking-site/internal/session"
	"bitbucket.org/hovr/booking-site/internal/tools/converting"
	"bitbucket.org/hovr/booking-site/internal/web/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
	"github.com/rs/zerolog"
)

type Sessions interface {
	State(ctx context.Context, id string, logger *zerolog.Logger) booking.State
	Submit(ctx context.Context, id string, snapshot booking.FormSnapshot, logger *zerolog.Logger) (booking.State, error)
	Reject(ctx context.Context, id string, snapshot booking.FormSnapshot, message string, logger *zerolog.Logger) (booking.State, error)
	RecomputeQuote(ctx context.Context, id string, snapshot booking.FormSnapshot, logger *zerolog.Logger) quote.Breakdown
}

type Options struct {
	Sessions     Sessions
	Tokens       *session.Tokens
	SecureCookie bool
	// Now dates the page, time.Now when nil
	Now func() time.Time
}

type QuoteResponse struct {
	PriceTotal schema.RoundedFloat `json:"price_total"`
	Breakdown  quote.Breakdown     `json:"breakdown"`
}

func RegisterRoutes(router *gin.Engine, options Options) {
	now := options.Now
	if now == nil {
		now = time.Now
	}

	router.SetHTMLTemplate(page.Templates())
	router.StaticFS("/static", page.Assets())

	group := router.Group("/", PrepareSession(options.Tokens, options.SecureCookie))

	group.GET("/", func(ctx *gin.Context) {
		logger := middleware.Logger(ctx)

		preselect := page.Preselect{}
		if err := ctx.ShouldBindQuery(&preselect); err != nil {
			logger.Info().Err(err).Msg("Ignoring page query")
		}

		state := options.Sessions.State(ctx.Request.Context(), ctx.GetString(SessionKey), logger)

		ctx.Header("Cache-Control", "no-store")
		ctx.HTML(http.StatusOK, page.IndexTemplate, page.NewView(state, preselect, now()))
	})

	// the page form always lands back on the form, a form that does not bind shows as a failed attempt
	group.POST("/booking", func(ctx *gin.Context) {
		logger := middleware.Logger(ctx)
		id := ctx.GetString(SessionKey)

		snapshot := booking.FormSnapshot{}
		var err error
		if bindErr := ctx.ShouldBind(&snapshot); bindErr != nil {
			logger.Info().Err(bindErr).Msg("Booking form rejected")
			_, err = options.Sessions.Reject(ctx.Request.Context(), id, snapshot, formRejection(bindErr), logger)
		} else {
			_, err = options.Sessions.Submit(ctx.Request.Context(), id, snapshot, logger)
		}

		if err != nil {
			logger.Info().Err(err).Msg("Form submission not run")
		}

		ctx.Redirect(http.StatusSeeOther, "/#booking")
	})

	group.GET(page.ReceiptPath, func(ctx *gin.Context) {
		logger := middleware.Logger(ctx)
		state := options.Sessions.State(ctx.Request.Context(), ctx.GetString(SessionKey), logger)

		if state.Receipt == nil {
			middleware.HandleError(ctx, http.StatusNotFound, "No confirmed booking", nil)
			return
		}

		document, filename, err := page.ReceiptPDF(*state.Receipt)
		if err != nil {
			middleware.HandleError(ctx, http.StatusInternalServerError, "Unable to render receipt", err)
			return
		}

		ctx.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
		ctx.Data(http.StatusOK, "application/pdf", document)
	})

	api := group.Group("/api")

	api.GET("/quote", func(ctx *gin.Context) {
		snapshot, err := bindQuoteParams(ctx)
		if err != nil {
			middleware.HandleError(ctx, http.StatusBadRequest, "Invalid quote parameters", err)
			return
		}

		breakdown := options.Sessions.RecomputeQuote(
			ctx.Request.Context(),
			ctx.GetString(SessionKey),
			snapshot,
			middleware.Logger(ctx),
		)

		ctx.JSON(http.StatusOK, QuoteResponse{
			PriceTotal: breakdown.Total,
			Breakdown:  breakdown,
		})
	})

	api.POST("/booking",
		PrepareParams[booking.FormSnapshot](),
		func(ctx *gin.Context) {
			params := ctx.MustGet(ParamsKey).(*booking.FormSnapshot)

			state, err := options.Sessions.Submit(
				ctx.Request.Context(),
				ctx.GetString(SessionKey),
				*params,
				middleware.Logger(ctx),
			)
			if errors.Is(err, booking.ErrSubmissionPending) {
				middleware.HandleError(ctx, http.StatusConflict, "A booking submission is already pending", err)
				return
			}

			ctx.JSON(http.StatusOK, state)
		},
	)

	api.GET("/state", func(ctx *gin.Context) {
		state := options.Sessions.State(ctx.Request.Context(), ctx.GetString(SessionKey), middleware.Logger(ctx))
		ctx.JSON(http.StatusOK, state)
	})
}

var formLabels = map[string]string{
	"FullName":       "full name",
	"Email":          "email",
	"Phone":          "phone",
	"PickupLocation": "pickup location",
	"Date":           "date",
	"Time":           "time",
}

// formRejection names the fields a failed form binding complained about.
func formRejection(err error) string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return "The booking form could not be read"
	}

	fields := make([]string, 0, len(invalid))
	for _, fieldErr := range invalid {
		label, ok := formLabels[fieldErr.Field()]
		if !ok {
			label = strings.ToLower(fieldErr.Field())
		}
		fields = append(fields, label)
	}

	return "Please check your " + strings.Join(fields, ", ")
}

// bindQuoteParams reads the optional selection fields. Their values stay text, the quote parses
// them leniently.
func bindQuoteParams(ctx *gin.Context) (booking.FormSnapshot, error) {
	var params struct {
		DurationHours *string
		Passengers    *string
		Package       *string
	}

	query := ctx.Request.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "duration_hours", query, &params.DurationHours); err != nil {
		return booking.FormSnapshot{}, fmt.Errorf("invalid format for parameter duration_hours: %w", err)
	}

	if err := runtime.BindQueryParameter("form", true, false, "passengers", query, &params.Passengers); err != nil {
		return booking.FormSnapshot{}, fmt.Errorf("invalid format for parameter passengers: %w", err)
	}

	if err := runtime.BindQueryParameter("form", true, false, "package", query, &params.Package); err != nil {
		return booking.FormSnapshot{}, fmt.Errorf("invalid format for parameter package: %w", err)
	}

	return booking.FormSnapshot{
		DurationHours: converting.Unwrap(params.DurationHours),
		Passengers:    converting.Unwrap(params.Passengers),
		Package:       converting.Unwrap(params.Package),
	}, nil
}
