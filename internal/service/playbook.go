package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"composer/internal/client"
	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// PlaybookService manages the playbook lifecycle over the typed client.
type PlaybookService struct {
	client client.ComposerClient
}

// NewPlaybookService creates a playbook service.
func NewPlaybookService(c client.ComposerClient) *PlaybookService {
	return &PlaybookService{client: c}
}

// CreateParams describes a new playbook: its presentation fields and the
// lead actor everything else is resolved from.
type CreateParams struct {
	Title       string
	Description string
	Actor       composerv1alpha1.ActorSpec
}

// Create materializes a new playbook named by a fresh UUID, with a
// dedicated namespace derived from the same UUID. The returned id is the
// playbook's name.
func (s *PlaybookService) Create(ctx context.Context, params CreateParams) (string, error) {
	id := uuid.New().String()

	playbook := &composerv1alpha1.Playbook{
		ObjectMeta: metav1.ObjectMeta{
			Name: id,
		},
		Spec: composerv1alpha1.PlaybookSpec{
			Title:       params.Title,
			Description: params.Description,
			Namespace:   fmt.Sprintf("composer-%s", id),
			Actors:      []composerv1alpha1.ActorSpec{params.Actor},
		},
	}

	if err := s.client.CreatePlaybook(ctx, playbook); err != nil {
		return "", err
	}

	logging.Info("PlaybookService", "Created playbook %s (%s)", id, params.Title)
	return id, nil
}

// Get retrieves a playbook by id.
func (s *PlaybookService) Get(ctx context.Context, id string) (*composerv1alpha1.Playbook, error) {
	return s.client.GetPlaybook(ctx, id)
}

// List returns all playbooks.
func (s *PlaybookService) List(ctx context.Context) ([]composerv1alpha1.Playbook, error) {
	return s.client.ListPlaybooks(ctx)
}

// Start resumes a stopped playbook by marking it ready to run again. A
// playbook that never ran is left alone; the controller is already
// driving it through its initial states.
func (s *PlaybookService) Start(ctx context.Context, id string) error {
	playbook, err := s.client.GetPlaybook(ctx, id)
	if err != nil {
		return err
	}
	if !playbook.Status.Running() {
		logging.Debug("PlaybookService", "Playbook %s is still converging, nothing to start", id)
		return nil
	}

	playbook.Status = composerv1alpha1.RunningState(true, "ManualStart", "")
	return s.client.UpdatePlaybookStatus(ctx, playbook)
}

// Stop marks a running playbook not ready. The controller keeps
// resyncing it but the not-ready status is visible to every consumer.
func (s *PlaybookService) Stop(ctx context.Context, id string) error {
	playbook, err := s.client.GetPlaybook(ctx, id)
	if err != nil {
		return err
	}

	playbook.Status = composerv1alpha1.RunningState(false, "ManualStop", "Stopped by operator")
	return s.client.UpdatePlaybookStatus(ctx, playbook)
}

// Update rewrites a playbook's presentation fields.
func (s *PlaybookService) Update(ctx context.Context, id string, title, description string) (*composerv1alpha1.Playbook, error) {
	playbook, err := s.client.GetPlaybook(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		playbook.Spec.Title = title
	}
	if description != "" {
		playbook.Spec.Description = description
	}

	if err := s.client.UpdatePlaybook(ctx, playbook); err != nil {
		return nil, err
	}
	return playbook, nil
}

// Delete removes a playbook. Sub-resource cleanup runs behind the
// controller's finalizer.
func (s *PlaybookService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeletePlaybook(ctx, id); err != nil {
		return err
	}
	logging.Info("PlaybookService", "Deleted playbook %s", id)
	return nil
}
