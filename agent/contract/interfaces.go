package contract

import "context"

type Calculator interface {
	Calculate(ctx context.Context, req CalculatorRequest) (CalculatorResponse, error)
}

type ProductSearcher interface {
	SearchProducts(ctx context.Context, req ProductSearchRequest) (ProductSearchResponse, error)
}

type OutletFinder interface {
	FindOutlets(ctx context.Context, req OutletQueryRequest) (OutletQueryResponse, error)
}

// Completer is the optional language-model backend used by the intent
// classifier. It returns the raw model text.
type Completer interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}
