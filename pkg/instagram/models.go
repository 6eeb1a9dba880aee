package instagram

// Container status codes reported by the Graph API
const (
	StatusFinished   = "FINISHED"
	StatusInProgress = "IN_PROGRESS"
	StatusError      = "ERROR"
	StatusExpired    = "EXPIRED"
	StatusPublished  = "PUBLISHED"
)

// idResponse is returned by container creation and media_publish
type idResponse struct {
	ID string `json:"id"`
}

// statusResponse is returned by GET /{container-id}?fields=status_code,status
type statusResponse struct {
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
	Status     string `json:"status"`
}
