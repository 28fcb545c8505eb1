package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/statements-cli/internal/edgar"
	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/model"
)

// --- FilingSource Mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListFilings(ctx context.Context, company model.Company, q edgar.FilingQuery) (model.Company, []model.Filing, error) {
	args := m.Called(ctx, company, q)
	if args.Get(1) == nil {
		return args.Get(0).(model.Company), nil, args.Error(2)
	}
	return args.Get(0).(model.Company), args.Get(1).([]model.Filing), args.Error(2)
}

func (m *mockSource) Document(ctx context.Context, company model.Company, f model.Filing) (*fetcher.Payload, error) {
	args := m.Called(ctx, company, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetcher.Payload), args.Error(1)
}
