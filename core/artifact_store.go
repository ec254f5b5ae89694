package core

// ArtifactStore defines the interface for artifact persistence (calendar
// invites and similar generated files). Implementations should be thread-safe
// and scope artifacts by invocation identifier. Short method names
// (Save/Get/List/Delete) mirror the other interfaces for consistency.
type ArtifactStore interface {
	Save(invocationID, artifactID string, data []byte) error
	Get(invocationID, artifactID string) ([]byte, error)
	List(invocationID string) ([]string, error)
	Delete(invocationID, artifactID string) error
}
