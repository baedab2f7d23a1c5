// pkg/manifest/manifest.go
package manifest

import (
	"encoding/json"
	"net/http"

	"pardotcog/pkg/cog"
)

// Document is the cog manifest the orchestrator reads to discover which
// steps this adapter exposes and how to authenticate against it.
type Document struct {
	Name       string           `json:"name"`
	Label      string           `json:"label"`
	Version    string           `json:"version"`
	AuthFields []cog.FieldDef   `json:"auth_fields"`
	Steps      []cog.Definition `json:"steps"`
}

// AuthFields lists every credential field any supported auth strategy reads.
// Which subset is supplied decides the strategy at session creation.
func AuthFields() []cog.FieldDef {
	return []cog.FieldDef{
		{Key: "instanceUrl", Type: cog.FieldURL, Description: "Login/Instance URL (e.g. https://login.salesforce.com)", Optional: true},
		{Key: "clientId", Type: cog.FieldString, Description: "OAuth2 Client ID", Optional: true},
		{Key: "clientSecret", Type: cog.FieldString, Description: "OAuth2 Client Secret", Optional: true},
		{Key: "username", Type: cog.FieldString, Description: "Username", Optional: true},
		{Key: "password", Type: cog.FieldString, Description: "Password", Optional: true},
		{Key: "accessToken", Type: cog.FieldString, Description: "OAuth2 Access Token", Optional: true},
		{Key: "refreshToken", Type: cog.FieldString, Description: "OAuth2 Refresh Token", Optional: true},
		{Key: "email", Type: cog.FieldEmail, Description: "Pardot user email (legacy login)", Optional: true},
		{Key: "userKey", Type: cog.FieldString, Description: "Pardot user key (legacy login)", Optional: true},
		{Key: "pardotUrl", Type: cog.FieldURL, Description: "Pardot API host (defaults to pi.pardot.com)", Optional: true},
		{Key: "businessUnitId", Type: cog.FieldString, Description: "Default Business Unit ID"},
		{Key: "additionalBusinessUnits", Type: cog.FieldMap, Description: "Named Business Unit overrides", Optional: true},
	}
}

// Build assembles the manifest for the given step definitions.
func Build(name, label, version string, steps []cog.Definition) Document {
	return Document{
		Name:       name,
		Label:      label,
		Version:    version,
		AuthFields: AuthFields(),
		Steps:      steps,
	}
}

// ServeHandler returns an HTTP handler serving the manifest JSON.
func ServeHandler(doc Document) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}
}
