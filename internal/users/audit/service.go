// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"

	"github.com/taibuivan/sentinel/internal/platform/constants"
)

// Service implements the read side of the login history.
type Service struct {
	repository Repository
}

// NewService constructs a new audit [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

/*
History returns the caller's own login history.

Parameters:
  - context: context.Context
  - accountID: string (always the verified caller, never client input)

Returns:
  - []*Entry: Newest first, at most [constants.LoginHistoryLimit] entries
  - error: Wrapped store failure
*/
func (service *Service) History(context context.Context, accountID string) ([]*Entry, error) {
	entries, err := service.repository.ListByAccount(context, accountID, constants.LoginHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("audit_service_history_failed: %w", err)
	}
	return entries, nil
}
