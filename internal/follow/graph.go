// Package follow maintains the follow relationship stored redundantly in the
// following and followed_by lists of two account rows. Every mutation locks
// both rows inside one store transaction so the lists stay mirror images.
package follow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/folio-social/folio/internal/db"
	"github.com/folio-social/folio/internal/models"
	"github.com/folio-social/folio/pkg/logging"
	"github.com/folio-social/folio/pkg/telemetry"
)

// Graph is the follow graph manager
type Graph struct {
	store     db.Store
	logger    *zap.Logger
	follows   metric.Int64Counter
	unfollows metric.Int64Counter
}

// NewGraph creates a follow graph manager over store
func NewGraph(store db.Store) *Graph {
	return &Graph{
		store:     store,
		logger:    logging.WithComponent("follow-graph"),
		follows:   telemetry.Counter("folio.follows", "Follow edges created"),
		unfollows: telemetry.Counter("folio.unfollows", "Follow edges removed"),
	}
}

// Follow makes followerID follow followedID
func (g *Graph) Follow(ctx context.Context, followerID, followedID int64) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "follow.establish")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("follower_id", followerID),
		attribute.Int64("followed_id", followedID),
	)
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if followerID == followedID {
		return models.ErrSelfFollow
	}

	err = g.store.Transaction(ctx, func(tx db.Store) error {
		follower, followed, err := lockPair(ctx, tx, followerID, followedID)
		if err != nil {
			return err
		}

		if follower.IsFollowing(followedID) || followed.IsFollowedBy(followerID) {
			return models.ErrAlreadyFollowing
		}

		follower.Following = append(follower.Following, followedID)
		followed.FollowedBy = append(followed.FollowedBy, followerID)

		if err := tx.Update(ctx, follower); err != nil {
			return fmt.Errorf("failed to save follower: %w", err)
		}
		if err := tx.Update(ctx, followed); err != nil {
			return fmt.Errorf("failed to save followed account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.follows.Add(ctx, 1)
	logging.FromContext(ctx, g.logger).Debug("Follow established",
		zap.Int64("follower_id", followerID),
		zap.Int64("followed_id", followedID))

	return nil
}

// Unfollow removes the edge from followerID to followedID. It is the exact
// inverse of Follow: followedID leaves the follower's following list and
// followerID leaves the followed account's followed_by list.
func (g *Graph) Unfollow(ctx context.Context, followerID, followedID int64) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "follow.remove")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("follower_id", followerID),
		attribute.Int64("followed_id", followedID),
	)
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if followerID == followedID {
		return models.ErrSelfFollow
	}

	err = g.store.Transaction(ctx, func(tx db.Store) error {
		follower, followed, err := lockPair(ctx, tx, followerID, followedID)
		if err != nil {
			return err
		}

		if !follower.IsFollowing(followedID) {
			return models.ErrNotFollowing
		}

		follower.RemoveFollowing(followedID)
		// a missing mirror entry is repaired rather than reported
		if !followed.RemoveFollowedBy(followerID) {
			g.logger.Warn("Follow edge was asymmetric",
				zap.Int64("follower_id", followerID),
				zap.Int64("followed_id", followedID))
		}

		if err := tx.Update(ctx, follower); err != nil {
			return fmt.Errorf("failed to save follower: %w", err)
		}
		if err := tx.Update(ctx, followed); err != nil {
			return fmt.Errorf("failed to save followed account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.unfollows.Add(ctx, 1)
	logging.FromContext(ctx, g.logger).Debug("Follow removed",
		zap.Int64("follower_id", followerID),
		zap.Int64("followed_id", followedID))

	return nil
}

// Detach removes id from the follow lists of every account that references it.
// tx must be a transactional store; it is used by account deletion.
func (g *Graph) Detach(ctx context.Context, tx db.Store, id int64) error {
	refs, err := tx.FindReferencing(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find follow references: %w", err)
	}

	for _, acc := range refs {
		if acc.ID == id {
			continue
		}
		acc.RemoveFollowing(id)
		acc.RemoveFollowedBy(id)
		if err := tx.Update(ctx, acc); err != nil {
			return fmt.Errorf("failed to detach account %d: %w", acc.ID, err)
		}
	}

	if len(refs) > 0 {
		g.logger.Debug("Detached follow edges",
			zap.Int64("account_id", id),
			zap.Int("references", len(refs)))
	}
	return nil
}

// lockPair locks both accounts in ascending id order so concurrent follows
// of the same pair cannot deadlock, and returns them as (first, second)
func lockPair(ctx context.Context, tx db.Store, firstID, secondID int64) (*models.Account, *models.Account, error) {
	lowID, highID := firstID, secondID
	if lowID > highID {
		lowID, highID = highID, lowID
	}

	low, err := tx.GetForUpdate(ctx, lowID)
	if err != nil {
		return nil, nil, err
	}
	high, err := tx.GetForUpdate(ctx, highID)
	if err != nil {
		return nil, nil, err
	}

	if low.ID == firstID {
		return low, high, nil
	}
	return high, low, nil
}
