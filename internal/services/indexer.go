package services

import (
	"context"
	"strconv"

	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/pii"
	"github.com/sirupsen/logrus"
)

// Indexer keeps the similarity index in step with stored complaints. Nothing
// it does fails a request.
type Indexer struct {
	embedder Embedder
	index    VectorIndex
	logger   *logrus.Logger
}

func NewIndexer(embedder Embedder, index VectorIndex, logger *logrus.Logger) *Indexer {
	return &Indexer{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Vector embeds the masked form of text. It returns nil only for blank text.
func (i *Indexer) Vector(ctx context.Context, text string) []float32 {
	vector, err := i.embedder.Embed(ctx, pii.Mask(text))
	if err != nil {
		i.logger.WithError(err).Warn("Skipping embedding")
		return nil
	}
	return vector
}

func (i *Indexer) IsDuplicate(ctx context.Context, vector []float32) bool {
	if len(vector) == 0 {
		return false
	}
	return i.index.HasDuplicate(ctx, vector)
}

// Index upserts a stored complaint. vector may be nil, in which case the
// description is embedded first.
func (i *Indexer) Index(ctx context.Context, complaint *models.Complaint, vector []float32) bool {
	if vector == nil {
		vector = i.Vector(ctx, complaint.Description)
	}
	if len(vector) == 0 {
		return false
	}

	ok := i.index.Upsert(ctx, strconv.FormatUint(uint64(complaint.ID), 10), vector,
		string(complaint.Category), pii.Mask(complaint.Description))
	if !ok {
		i.logger.WithField("complaint_id", complaint.ID).Warn("Complaint was not indexed")
	}
	return ok
}

func (i *Indexer) Remove(ctx context.Context, id uint) {
	i.index.Delete(ctx, strconv.FormatUint(uint64(id), 10))
}

// Reindex embeds and upserts every complaint one at a time. Per-item failures
// are counted and logged, never returned.
func (i *Indexer) Reindex(ctx context.Context, complaints []models.Complaint) (indexed, failed int) {
	if err := i.index.EnsureCollection(ctx); err != nil {
		i.logger.WithError(err).Warn("Vector collection unavailable, reindex will likely fail")
	}

	for idx := range complaints {
		if ctx.Err() != nil {
			i.logger.WithError(ctx.Err()).Warn("Reindex interrupted")
			failed += len(complaints) - idx
			break
		}
		if i.Index(ctx, &complaints[idx], nil) {
			indexed++
		} else {
			failed++
		}
	}

	i.logger.WithFields(logrus.Fields{
		"total":   len(complaints),
		"indexed": indexed,
		"failed":  failed,
	}).Info("Reindex finished")

	return indexed, failed
}
