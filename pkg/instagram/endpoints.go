package instagram

import (
	"fmt"
	"strings"
)

// Carousel limits enforced by the Graph API
const (
	MinCarouselItems = 2
	MaxCarouselItems = 10
)

// Endpoints builds Graph API URLs for one business account
type Endpoints struct {
	BaseURL   string
	Version   string
	AccountID string
}

func (e Endpoints) root() string {
	return strings.TrimRight(e.BaseURL, "/") + "/" + e.Version
}

// Media is the container creation endpoint
func (e Endpoints) Media() string {
	return fmt.Sprintf("%s/%s/media", e.root(), e.AccountID)
}

// MediaPublish publishes a finished container
func (e Endpoints) MediaPublish() string {
	return fmt.Sprintf("%s/%s/media_publish", e.root(), e.AccountID)
}

// Container is the node URL for a container id
func (e Endpoints) Container(id string) string {
	return fmt.Sprintf("%s/%s", e.root(), id)
}
