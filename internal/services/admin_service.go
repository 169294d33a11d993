package services

import (
	"log"
	"net/http"
	"time"

	"github.com/campuspay/ledger/internal/archive"
	"github.com/campuspay/ledger/internal/worker"
)

// AdminService exposes the archival sweep trigger and collector statistics
type AdminService struct {
	sweeper   *archive.Sweeper
	collector *worker.Collector
	retention time.Duration
}

// NewAdminService creates a new admin service
func NewAdminService(sweeper *archive.Sweeper, collector *worker.Collector, retention time.Duration) *AdminService {
	return &AdminService{
		sweeper:   sweeper,
		collector: collector,
		retention: retention,
	}
}

// TriggerArchive runs the archival sweep now. Purchases queue behind it;
// a sweep already in progress returns 503.
// @Summary Archive old transactions
// @Description Exports records older than the retention window to CSV and removes them from the live log
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} ErrorResponse
// @Router /admin/archive [post]
func (ad *AdminService) TriggerArchive(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().UTC().Add(-ad.retention)

	summary, err := ad.sweeper.Archive(cutoff)
	if err != nil {
		log.Printf("[ADMIN] Archive failed: %v", err)
		SendLedgerError(w, err)
		return
	}

	response := map[string]interface{}{
		"success":               true,
		"transactions_archived": summary.Archived,
		"expired_keys_deleted":  summary.PurgedKeys,
		"archive_time":          time.Now().UTC(),
	}
	if summary.ArchivePath != "" {
		response["archive_file"] = summary.ArchivePath
	}

	SendJSONResponse(w, http.StatusOK, response)
}

// CollectorStatus returns aggregated ledger statistics
// @Summary Collector status
// @Tags admin
// @Produce json
// @Success 200 {object} worker.Status
// @Router /admin/collector [get]
func (ad *AdminService) CollectorStatus(w http.ResponseWriter, r *http.Request) {
	SendJSONResponse(w, http.StatusOK, ad.collector.CurrentStatus())
}
