package service

import (
	"fmt"
	"strconv"

	"anoa.com/betpoints/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"
)

const transactionIndex = "transactions"

// SearchService keeps an audit-search index of ledger transactions for the
// admin reconciliation screens. The durable source of truth stays in the
// transactions table; the index is a convenience and may lag.
type SearchService interface {
	IndexTransaction(txn *model.Transaction) error
	SearchTransactions(query string, userID string, limit int64) ([]map[string]interface{}, error)
}

type searchService struct {
	client meilisearch.ServiceManager
	log    *logrus.Logger
}

func NewSearchService(client meilisearch.ServiceManager, log *logrus.Logger) SearchService {
	s := &searchService{client: client, log: log}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	idx := s.client.Index(transactionIndex)

	if _, err := idx.UpdateFilterableAttributes(&[]string{"user_id", "kind", "point_type"}); err != nil {
		s.log.WithError(err).Warn("failed to configure transaction index filters")
	}
	if _, err := idx.UpdateSortableAttributes(&[]string{"created_at"}); err != nil {
		s.log.WithError(err).Warn("failed to configure transaction index sorting")
	}
}

func (s *searchService) IndexTransaction(txn *model.Transaction) error {
	doc := map[string]interface{}{
		"id":             strconv.FormatUint(uint64(txn.ID), 10),
		"user_id":        txn.UserID.String(),
		"point_type":     txn.PointTypeSlug,
		"kind":           string(txn.Kind),
		"amount":         txn.Amount,
		"balance_before": txn.BalanceBefore,
		"balance_after":  txn.BalanceAfter,
		"reason":         txn.Reason,
		"created_at":     txn.CreatedAt.Unix(),
	}
	if txn.ReferenceType != nil {
		doc["reference_type"] = *txn.ReferenceType
	}
	if txn.ReferenceID != nil {
		doc["reference_id"] = *txn.ReferenceID
	}

	_, err := s.client.Index(transactionIndex).AddDocuments([]map[string]interface{}{doc})
	return err
}

func (s *searchService) SearchTransactions(query string, userID string, limit int64) ([]map[string]interface{}, error) {
	req := &meilisearch.SearchRequest{
		Limit: limit,
		Sort:  []string{"created_at:desc"},
	}
	if userID != "" {
		req.Filter = fmt.Sprintf("user_id = %q", userID)
	}

	resp, err := s.client.Index(transactionIndex).Search(query, req)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if doc, ok := hit.(map[string]interface{}); ok {
			results = append(results, doc)
		}
	}
	return results, nil
}
