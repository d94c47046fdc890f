package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/feast-serving/engine/internal/model"
)

// getOnlineFeaturesRequest is the wire shape of POST /get-online-features,
// validated with go-playground/validator tags before conversion to
// model.GetOnlineFeatureRequest.
type getOnlineFeaturesRequest struct {
	Entities         map[string][]json.RawMessage `json:"entities" validate:"required,min=1"`
	FeatureService   *string                       `json:"feature_service"`
	Features         []string                      `json:"features"`
	FullFeatureNames bool                           `json:"full_feature_names"`
}

// entityOrderFromJSON walks the raw "entities" object's tokens to recover
// its key order, since json.Unmarshal into a Go map discards it and the
// response builder must enumerate entity columns in request order.
func entityOrderFromJSON(body []byte) ([]string, error) {
	var envelope struct {
		Entities json.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding request envelope: %w", err)
	}
	if len(envelope.Entities) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Entities))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading entities object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("entities must be a JSON object")
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading entity key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("entity key is not a string")
		}
		order = append(order, key)

		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, fmt.Errorf("reading entity values for %q: %w", key, err)
		}
	}
	return order, nil
}

// toEntityIDValue converts one JSON-encoded entity identifier into the
// restricted EntityIdValue union (string or int64).
func toEntityIDValue(raw json.RawMessage) (model.EntityIdValue, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return model.NewEntityIDString(s), nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		i, err := n.Int64()
		if err != nil {
			return model.EntityIdValue{}, fmt.Errorf("entity value %s is not an integer: %w", n.String(), err)
		}
		return model.NewEntityIDInt(i), nil
	}

	return model.EntityIdValue{}, fmt.Errorf("unsupported entity value %s: expected string or integer", string(raw))
}

// toModelRequest converts the validated DTO plus its recovered entity
// order into the core request shape.
func (r *getOnlineFeaturesRequest) toModelRequest(entityOrder []string) (*model.GetOnlineFeatureRequest, error) {
	entities := make(map[string][]model.EntityIdValue, len(r.Entities))
	for name, rawValues := range r.Entities {
		values := make([]model.EntityIdValue, len(rawValues))
		for i, raw := range rawValues {
			v, err := toEntityIDValue(raw)
			if err != nil {
				return nil, fmt.Errorf("entity %q: %w", name, err)
			}
			values[i] = v
		}
		entities[name] = values
	}

	return &model.GetOnlineFeatureRequest{
		Entities:         entities,
		EntityOrder:      entityOrder,
		FeatureService:   r.FeatureService,
		Features:         r.Features,
		FullFeatureNames: r.FullFeatureNames,
	}, nil
}
