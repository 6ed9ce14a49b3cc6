package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/models/scopes"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"github.com/wasnasmay/altess-final-sub004/src/webhooks"
	"gorm.io/gorm"
)

type sessionLookup func(ctx context.Context, id string) (*stripe.CheckoutSession, error)

// checkoutHandlers serves the confirmation page, which polls until the
// webhook has confirmed the purchase.
func checkoutHandlers(g *gin.RouterGroup, db *gorm.DB, lookup sessionLookup) *gin.RouterGroup {
	g.GET("/checkout/sessions/:id", func(ctx *gin.Context) {
		var params types.CheckoutSessionParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			log.Printf("Error in validating request: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var purchase models.TicketPurchase
		err := db.WithContext(ctx).
			Preload("Event").
			Where("stripe_session_id = ?", params.ID).
			First(&purchase).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) && lookup != nil {
			// Not confirmed yet: the session metadata still names the purchase.
			err = purchaseFromSession(ctx, db, lookup, params.ID, &purchase)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			log.Printf("Error retrieving purchase for session %s: %s\n", params.ID, err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"purchase": purchase.ToAPIResponse()})
	})
	return g
}

func purchaseFromSession(ctx context.Context, db *gorm.DB, lookup sessionLookup, sessionID string, purchase *models.TicketPurchase) error {
	cs, err := lookup(ctx, sessionID)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	id, err := uuid.Parse(cs.Metadata["ticket_id"])
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	return db.WithContext(ctx).
		Preload("Event").
		Scopes(scopes.WithID(id)).
		First(purchase).
		Error
}

// adminHandlers lets support staff re-send the ticket email of a confirmed
// purchase.
func adminHandlers(g *gin.RouterGroup, db *gorm.DB, notifier webhooks.Notifier) *gin.RouterGroup {
	g.POST("/ticket-purchases/:id/notify", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var purchase models.TicketPurchase
		if err := db.WithContext(ctx).
			Preload("Event").
			Preload("Event.Organizer").
			Scopes(scopes.WithID(uuid.MustParse(params.ID))).
			First(&purchase).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			log.Printf("Error retrieving ticket purchase [%s]: %s\n", params.ID, err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !purchase.Confirmed() {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Ticket purchase is not paid"})
			return
		}
		notifier.Notify(purchase.ToNotification())
		log.Printf("[notify] Ticket email for %s re-queued by %s\n", purchase.ID, ctx.GetString("sub"))
		ctx.JSON(http.StatusAccepted, gin.H{"queued": true})
	})
	return g
}
