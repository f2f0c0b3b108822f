package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// DecisionCollection defines the interface for decision journal operations.
type DecisionCollection interface {
	SubmitDecision(ctx context.Context, d models.DecisionRecord) error
	FindDecisions(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (DecisionCursor, error)
}

// DecisionCursor defines the interface for decision cursor operations.
type DecisionCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
