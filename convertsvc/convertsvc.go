// Package convertsvc exposes the ballot type conversion as an HTTP
// service. One run at a time; progress is reported through the status
// endpoint.
package convertsvc

import (
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/OSVTAC/osv-data-converter/assoc"
	"github.com/OSVTAC/osv-data-converter/config"
	"github.com/OSVTAC/osv-data-converter/district"
	"github.com/OSVTAC/osv-data-converter/emsfile"
	"github.com/OSVTAC/osv-data-converter/filestorage"
	"github.com/OSVTAC/osv-data-converter/precinct"
	"github.com/OSVTAC/osv-data-converter/rotation"
	"github.com/OSVTAC/osv-data-converter/status"
	"github.com/OSVTAC/osv-data-converter/tsvout"
	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/matryer/try"
)

const maxAttempts = 3

// Handler holds the run state of the conversion service.
type Handler struct {
	baseDir string                  // directory receiving one subdirectory per run
	storage filestorage.FileStorage // converted tables are uploaded here when set
	bucket  string                  // upload target bucket

	mu     sync.Mutex
	status status.Status // current phase
	err    string        // last error message
	runID  string        // last dispatched run
}

// used on Post
type postRequest struct {
	Source  string `json:"source"`  // export zip or directory
	Profile string `json:"profile"` // conversion profile path
}

// New returns a conversion service handler. storage may be nil, in which
// case converted tables stay under baseDir.
func New(baseDir string, storage filestorage.FileStorage, bucket string) *Handler {
	return &Handler{
		baseDir: baseDir,
		storage: storage,
		bucket:  bucket,
		status:  status.Idle,
	}
}

// Get returns the current phase, its display text and the last error.
func (h *Handler) Get(c echo.Context) error {
	st, errMessage, runID := h.snapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"runId":        runID,
		"status":       st,
		"statusText":   status.Text(st),
		"errorMessage": errMessage,
	})
}

// Post dispatches one conversion run. A second request while a run is in
// flight is refused.
func (h *Handler) Post(c echo.Context) error {
	in := postRequest{}
	if err := c.Bind(&in); err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf("invalid request body, error %q", err))
	}
	if in.Source == "" || in.Profile == "" {
		return c.String(http.StatusBadRequest, "inform source and profile")
	}
	h.mu.Lock()
	if h.status != status.Idle {
		h.mu.Unlock()
		return c.String(http.StatusServiceUnavailable, "a conversion is already running")
	}
	runID := uuid.New().String()
	h.status = status.Collecting
	h.err = ""
	h.runID = runID
	h.mu.Unlock()
	go h.convert(runID, in.Source, in.Profile)
	return c.JSON(http.StatusOK, map[string]string{"runId": runID})
}

func (h *Handler) convert(runID, source, profile string) {
	outDir := filepath.Join(h.baseDir, runID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		handleError(fmt.Sprintf("failed to create run directory [%s], error %q", outDir, err), h)
		return
	}
	cfg, err := config.Load(profile)
	if err != nil {
		handleError(err.Error(), h)
		return
	}
	src, err := emsfile.OpenSource(source)
	if err != nil {
		handleError(fmt.Sprintf("failed to open export source [%s], error %q", source, err), h)
		return
	}
	defer src.Close()
	h.setStatus(status.Converting)
	writers, err := buildTables(src, cfg, outDir)
	if err != nil {
		handleError(err.Error(), h)
		return
	}
	if err := tsvout.WriteAll(writers...); err != nil {
		handleError(err.Error(), h)
		return
	}
	for _, w := range writers {
		log.Printf("wrote [ %s ] with [ %d ] lines\n", w.Path(), w.Len())
	}
	if h.storage != nil {
		h.setStatus(status.Uploading)
		if err := h.uploadTables(writers); err != nil {
			handleError(err.Error(), h)
			return
		}
	}
	h.mu.Lock()
	h.status = status.Idle
	h.err = ""
	h.mu.Unlock()
	log.Printf("conversion run [ %s ] finished\n", runID)
}

// buildTables runs the association builder over the export and buffers
// the four ballot type tables. Nothing reaches disk here.
func buildTables(src *emsfile.Source, cfg *config.Config, outDir string) ([]*tsvout.Writer, error) {
	rule, err := cfg.PrecinctRule()
	if err != nil {
		return nil, err
	}
	records, err := src.Precincts()
	if err != nil {
		return nil, err
	}
	recs := make([]precinct.Record, len(records))
	for i, r := range records {
		recs[i] = precinct.Record{
			ID:          r.PrecinctID,
			Name:        r.PrecinctName,
			BallotType:  r.BallotType,
			DistrictIDs: strings.Fields(r.DistrictIDs),
		}
	}
	precincts, _, err := precinct.Normalize(recs, cfg.PrecinctConsolidation, rule)
	if err != nil {
		return nil, err
	}
	master, err := src.Contests()
	if err != nil {
		return nil, err
	}
	byBallotType, err := src.BallotTypeContests()
	if err != nil {
		return nil, err
	}
	rotations, err := rotation.NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	nameRecords, err := src.Districts()
	if err != nil {
		return nil, err
	}
	names := make([]district.NameRecord, len(nameRecords))
	for i, r := range nameRecords {
		names[i] = district.NameRecord{ID: r.DistrictID, Name: r.DistrictName}
	}
	ordinals := districtOrdinals(district.Normalize(names, cfg.DistrictPortionLabels))

	tables, err := assoc.Build(assoc.Input{
		Precincts:        precincts,
		Master:           master,
		ByBallotType:     byBallotType,
		Rotations:        rotations,
		DistrictOrdinals: ordinals,
		Digits:           cfg.Digits(),
		SuffixParties:    cfg.SuffixParties(),
		PrecinctOrder:    cfg.PrecinctDisplayOrder,
		EmitUnsuffixed:   true,
	})
	if err != nil {
		return nil, err
	}

	sep := cfg.Separator()
	btpct := tsvout.NewWriter(filepath.Join(outDir, "btpct.tsv"), sep,
		"ballot_type", "precinct_ids").RequireUniqueCol(0)
	for _, row := range tables.BTPct {
		btpct.AddLine(row.BallotType, strings.Join(row.IDs, " "))
	}
	btcont := tsvout.NewWriter(filepath.Join(outDir, "btcont.tsv"), sep,
		"ballot_type", "contest_rot_ids").RequireUniqueCol(0)
	for _, row := range tables.BTCont {
		btcont.AddLine(row.BallotType, strings.Join(row.IDs, " "))
	}
	contlist := tsvout.NewWriter(filepath.Join(outDir, "contlist.tsv"), sep,
		"contest_id", "contest_title").RequireUniqueCol(0)
	for _, c := range tables.Contests {
		contlist.AddLine(c.ID, c.Title)
	}
	candorder := tsvout.NewWriter(filepath.Join(outDir, "candorder.tsv"), sep,
		"contest_id", "candidate_ids").RequireUniqueCol(0)
	for _, row := range tables.CandOrder {
		candorder.AddLine(row.ContestID, strings.Join(row.CandidateIDs, " "))
	}
	return []*tsvout.Writer{btpct, btcont, contlist, candorder}, nil
}

// districtOrdinals maps a district to its numeric portion, which is the
// rotation shift of contests elected by that district. Districts with a
// text portion or none have no ordinal.
func districtOrdinals(districts []district.District) map[string]int {
	ordinals := make(map[string]int)
	for _, d := range districts {
		n, err := strconv.Atoi(strings.TrimSpace(d.Portion))
		if err != nil {
			continue
		}
		ordinals[d.ID] = n
	}
	return ordinals
}

func (h *Handler) uploadTables(writers []*tsvout.Writer) error {
	for _, w := range writers {
		b, err := ioutil.ReadFile(w.Path())
		if err != nil {
			return fmt.Errorf("failed to read converted table [%s], error %q", w.Path(), err)
		}
		fileName := filepath.Base(w.Path())
		err = try.Do(func(attempt int) (bool, error) {
			_, err := h.storage.Upload(b, h.bucket, fileName)
			return attempt < maxAttempts, err
		})
		if err != nil {
			return fmt.Errorf("failed to save table [%s] on bucket [%s], error %q", fileName, h.bucket, err)
		}
		log.Printf("sent table [ %s ]\n", fileName)
	}
	return nil
}

func (h *Handler) setStatus(s status.Status) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

func (h *Handler) snapshot() (status.Status, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, h.err, h.runID
}

func handleError(message string, h *Handler) {
	log.Println(message)
	h.mu.Lock()
	h.err = message
	h.status = status.Idle
	h.mu.Unlock()
}
