package model

import "context"

// ImportReader provides read-only access to trade imports.
type ImportReader interface {
	ListImports(ctx context.Context) ([]TradeImport, error)
	GetImport(ctx context.Context, id int64) (TradeImport, error)
}

// ImportActions moves imports through the processing pipeline.
type ImportActions interface {
	Consolidate(ctx context.Context, id int64, criteria string) (TradeImport, error)
	GenerateMXML(ctx context.Context, id int64) (TradeImport, error)
	PushToMurex(ctx context.Context, id int64) (TradeImport, error)
	DeleteImport(ctx context.Context, id int64) error
}

// LiveTradeAPI covers the live-trade queue and the demo generator settings.
type LiveTradeAPI interface {
	PendingCount(ctx context.Context) (int, error)
	PendingTrades(ctx context.Context) ([]LiveTrade, error)
	ProcessPending(ctx context.Context) (*TradeImport, error)
	DemoConfig(ctx context.Context) (DemoConfig, error)
	UpdateDemoConfig(ctx context.Context, cfg DemoConfig) (DemoConfig, error)
}

// Backend is the full contract the dashboard needs from the trade backend.
type Backend interface {
	ImportReader
	ImportActions
	LiveTradeAPI
}
