package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/integrations"
	"github.com/timenexus/timenexus/pkg/integrations/anat"
	"github.com/timenexus/timenexus/pkg/integrations/pathlinker"
)

// Services holds the settings of every extraction service.
type Services struct {
	PathLinker pathlinker.Options
	Anat       anat.Options

	// Client is shared by the services. Nil uses a client without extra
	// headers.
	Client *integrations.Client
}

// DefaultServices returns the default settings of every service.
func DefaultServices() Services {
	return Services{PathLinker: pathlinker.DefaultOptions(), Anat: anat.DefaultOptions()}
}

// New builds the named service.
func (s Services) New(name string, logger *log.Logger) (extract.Service, error) {
	if err := ValidateService(name); err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = integrations.NewClient(nil)
	}
	if name == ServiceAnat {
		return anat.New(s.Anat, client, logger)
	}
	return pathlinker.New(s.PathLinker, client, logger)
}
