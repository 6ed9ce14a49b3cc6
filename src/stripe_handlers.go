package main

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasnasmay/altess-final-sub004/src/webhooks"
)

// Stripe recommends rejecting anything larger; real events are far smaller.
const maxWebhookBodyBytes = int64(65536)

func stripeWebhookRoute(g *gin.Engine, verifier *webhooks.Verifier, reconciler *webhooks.Reconciler) *gin.RouterGroup {
	handler := stripeWebhookHandler(verifier, reconciler)
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhooks/stripe", handler)
	// path used by the dashboard endpoints registered before the v1 prefix
	g.POST("/api/webhooks/stripe", handler)
	return apiv1
}

func stripeWebhookHandler(verifier *webhooks.Verifier, reconciler *webhooks.Reconciler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBodyBytes)
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: " + err.Error()})
			return
		}

		event, err := verifier.Verify(payload, ctx.GetHeader("Stripe-Signature"))
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			var authErr *webhooks.AuthenticationError
			switch {
			case errors.Is(err, webhooks.ErrMissingSignature):
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing stripe-signature header"})
			case errors.Is(err, webhooks.ErrWebhookSecretMissing):
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
			case errors.As(err, &authErr):
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: " + authErr.Error()})
			default:
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		if err := reconciler.Handle(ctx.Request.Context(), event); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	}
}
