package loggingController

import (
	"context"

	"linkpage/internal/services"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type ClientLogIngester interface {
	Ingest(ctx context.Context, batch types.ClientLogBatch, viewer types.ClientViewer) (*types.ClientLogResult, error)
}

type LoggingControllerInterface interface {
	Record(ctx context.Context, batch types.ClientLogBatch, viewer types.ClientViewer) (*types.ClientLogResult, error)
}

type LoggingController struct {
	clientLogs ClientLogIngester
	log        logger.Logger
}

func New(services services.Service) LoggingControllerInterface {
	return &LoggingController{
		clientLogs: services.ClientLogs,
		log:        logger.New("loggingController"),
	}
}

// Record accepts diagnostics from a viewer of the profile page or the
// dashboard. The page heartbeat posts empty batches, which are accepted
// without touching the sink.
func (c *LoggingController) Record(
	ctx context.Context,
	batch types.ClientLogBatch,
	viewer types.ClientViewer,
) (*types.ClientLogResult, error) {
	log := c.log.TraceFromContext(ctx).Function("Record")

	if len(batch.Logs) == 0 {
		return &types.ClientLogResult{}, nil
	}

	if batch.Page == types.PageAdmin && viewer.UserID == "" {
		return nil, log.ErrorWithType(types.ErrValidation, "admin logs require a session")
	}

	result, err := c.clientLogs.Ingest(ctx, batch, viewer)
	if err != nil {
		return nil, err
	}

	if result.Accepted > 0 {
		log.Debug("Client logs recorded", "page", batch.Page, "accepted", result.Accepted)
	}
	return result, nil
}
