package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/feast-serving/engine/internal/errors"
	"github.com/feast-serving/engine/internal/featurestore"
	"github.com/feast-serving/engine/internal/health"
	"github.com/feast-serving/engine/internal/model"
)

var validate = validator.New()

type featureHandler struct {
	store *featurestore.FeatureStore
}

// responseColumn is the wire shape of one FeatureResults column.
type responseColumn struct {
	Values          []interface{} `json:"values"`
	Statuses        []string      `json:"statuses"`
	EventTimestamps []string      `json:"event_timestamps"`
}

type getOnlineFeaturesResponse struct {
	Metadata struct {
		FeatureNames []string `json:"feature_names"`
	} `json:"metadata"`
	Results []responseColumn `json:"results"`
}

func (h *featureHandler) handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
		return
	}

	var req getOnlineFeaturesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if (req.FeatureService == nil) == (len(req.Features) == 0) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "exactly one of feature_service or features must be set")
		return
	}

	entityOrder, err := entityOrderFromJSON(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	modelReq, err := req.toModelRequest(entityOrder)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	resp, err := h.store.GetOnlineFeatures(c.Request.Context(), modelReq)
	if err != nil {
		status := apierrors.HTTPStatus(err)
		writeError(c, status, apierrors.GetErrorCodeString(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, toWireResponse(resp))
}

func toWireResponse(resp *model.GetOnlineFeatureResponse) getOnlineFeaturesResponse {
	out := getOnlineFeaturesResponse{}
	out.Metadata.FeatureNames = resp.Metadata.FeatureNames
	out.Results = make([]responseColumn, len(resp.Results))
	for i, col := range resp.Results {
		rc := responseColumn{
			Values:          make([]interface{}, len(col.Values)),
			Statuses:        make([]string, len(col.Statuses)),
			EventTimestamps: make([]string, len(col.EventTimestamps)),
		}
		for j, v := range col.Values {
			rc.Values[j] = valueToJSON(v)
		}
		for j, s := range col.Statuses {
			rc.Statuses[j] = s.String()
		}
		for j, ts := range col.EventTimestamps {
			rc.EventTimestamps[j] = ts.Format(time.RFC3339Nano)
		}
		out.Results[i] = rc
	}
	return out
}

func valueToJSON(v *model.Value) interface{} {
	if model.IsNull(v) {
		return nil
	}
	switch {
	case v.StringVal != nil:
		return *v.StringVal
	case v.Int32Val != nil:
		return *v.Int32Val
	case v.Int64Val != nil:
		return *v.Int64Val
	case v.DoubleVal != nil:
		return *v.DoubleVal
	case v.FloatVal != nil:
		return *v.FloatVal
	case v.BoolVal != nil:
		return *v.BoolVal
	case v.BytesVal != nil:
		return v.BytesVal
	case v.StringListVal != nil:
		return v.StringListVal
	case v.Int32ListVal != nil:
		return v.Int32ListVal
	case v.Int64ListVal != nil:
		return v.Int64ListVal
	case v.DoubleListVal != nil:
		return v.DoubleListVal
	case v.FloatListVal != nil:
		return v.FloatListVal
	case v.BoolListVal != nil:
		return v.BoolListVal
	case v.BytesListVal != nil:
		return v.BytesListVal
	default:
		return nil
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

func healthHandler(checker *health.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := checker.RunChecks()
		status := http.StatusOK
		if result.Status == health.StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	}
}
