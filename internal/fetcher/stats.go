package fetcher

import "phenofetch/internal/models"

// Aggregate folds an ordered outcome list into run statistics in one pass.
// It is deterministic for a given list: the engine hands over outcomes in
// fixed ref order after each batch resolves, so no completion-order effects
// leak in here.
func Aggregate(outcomes []models.FetchOutcome) *models.RunStats {
	stats := &models.RunStats{Total: len(outcomes)}
	for _, outcome := range outcomes {
		addOutcome(stats, outcome)
	}
	return stats
}

func addOutcome(stats *models.RunStats, outcome models.FetchOutcome) {
	if !outcome.Success {
		stats.Failed++
		stats.Errors = append(stats.Errors, outcome)
		return
	}

	switch outcome.Status {
	case models.StatusAlreadyExists:
		stats.AlreadyExisted++
	case models.StatusSkipped:
		stats.Successful++
		if outcome.Ref.Kind == models.KindMeta {
			// Synthetic zero-size placeholder; counted apart so callers can
			// tell "0 bytes" from "size unavailable".
			stats.MetaPlaceholders++
			stats.Meta.Count++
		}
		return
	default:
		stats.Successful++
	}

	if outcome.SizeBytes == nil {
		bucketFor(stats, outcome.Ref.Kind).Count++
		return
	}

	bucket := bucketFor(stats, outcome.Ref.Kind)
	bucket.Count++
	bucket.Bytes += *outcome.SizeBytes
	stats.TotalBytes += *outcome.SizeBytes
}

func bucketFor(stats *models.RunStats, kind models.FileKind) *models.SizeBucket {
	switch kind {
	case models.KindThumbnail:
		return &stats.Thumbnail
	case models.KindMeta:
		return &stats.Meta
	default:
		return &stats.FullRes
	}
}
