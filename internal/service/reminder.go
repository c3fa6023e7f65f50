package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/clients"
	"github.com/Rose003/PaymentFlow33-sub001/internal/config"
	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
)

// ClientReminderState annotates a client with the most advanced escalation
// step reached by any of its open receivables.
type ClientReminderState struct {
	Client       domain.Client        `json:"client"`
	Step         *domain.ReminderStep `json:"step"`
	OverdueCount int                  `json:"overdue_count"`
	Outstanding  float64              `json:"outstanding"`
}

type ReminderService struct {
	receivables *ReceivableService
	repo        ReceivableStore
	clientRepo  ClientStore
	mailer      *clients.MailerClient
	s3          *clients.S3Client
	mailCfg     config.MailConfig
}

func NewReminderService(
	repo ReceivableStore,
	clientRepo ClientStore,
	receivables *ReceivableService,
	mailer *clients.MailerClient,
	s3 *clients.S3Client,
	mailCfg config.MailConfig,
) *ReminderService {
	return &ReminderService{
		repo:        repo,
		clientRepo:  clientRepo,
		receivables: receivables,
		mailer:      mailer,
		s3:          s3,
		mailCfg:     mailCfg,
	}
}

var stepRank = map[domain.ReminderStep]int{
	domain.StepFirst:  1,
	domain.StepSecond: 2,
	domain.StepThird:  3,
	domain.StepFinal:  4,
}

var stepStatus = map[domain.ReminderStep]string{
	domain.StepFirst:  domain.StatusReminder1,
	domain.StepSecond: domain.StatusReminder2,
	domain.StepThird:  domain.StatusReminder3,
	domain.StepFinal:  domain.StatusFinalNotice,
}

var stepSubject = map[domain.ReminderStep]string{
	domain.StepFirst:  "Rappel : facture en attente de règlement",
	domain.StepSecond: "Deuxième relance : facture impayée",
	domain.StepThird:  "Troisième relance : facture impayée",
	domain.StepFinal:  "Mise en demeure : dernier rappel avant procédure",
}

// AnnotateClients returns, per client, the current escalation state derived
// from that client's open receivables.
func (s *ReminderService) AnnotateClients(ctx context.Context, ownerIDs []string) ([]ClientReminderState, error) {
	clientList, err := s.clientRepo.List(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	receivables, err := s.repo.List(ctx, repository.ReceivablesFilter{OwnerIDs: ownerIDs})
	if err != nil {
		return nil, fmt.Errorf("load receivables: %w", err)
	}

	now := time.Now()

	states := make([]ClientReminderState, len(clientList))
	index := make(map[string]int, len(clientList))
	for i, c := range clientList {
		states[i] = ClientReminderState{Client: c}
		index[c.ID] = i
	}

	for _, r := range receivables {
		i, ok := index[r.ClientID]
		if !ok || r.Status == domain.StatusPaid {
			continue
		}

		if r.Overdue(now) {
			states[i].OverdueCount++
			states[i].Outstanding += r.Outstanding()
		}

		step := domain.ClassifyStep(r.DueDate, now, r.Client)
		if step == nil {
			continue
		}
		if states[i].Step == nil || stepRank[*step] > stepRank[*states[i].Step] {
			states[i].Step = step
		}
	}

	return states, nil
}

// ClientsNeedingReminder filters the annotation down to clients with a step.
func (s *ReminderService) ClientsNeedingReminder(ctx context.Context, ownerIDs []string) ([]ClientReminderState, error) {
	states, err := s.AnnotateClients(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	var due []ClientReminderState
	for _, st := range states {
		if st.Step != nil {
			due = append(due, st)
		}
	}
	return due, nil
}

// SendReminders dispatches one reminder email per overdue receivable of the
// targeted clients (all clients with a due step when clientIDs is empty),
// then advances each receivable's status to the sent step's label. Dispatch
// is a single batch to the external mail function; there is no local retry.
func (s *ReminderService) SendReminders(ctx context.Context, ownerIDs []string, clientIDs []string) (int, error) {
	states, err := s.ClientsNeedingReminder(ctx, ownerIDs)
	if err != nil {
		return 0, err
	}

	targeted := map[string]bool{}
	for _, id := range clientIDs {
		targeted[id] = true
	}

	receivables, err := s.repo.List(ctx, repository.ReceivablesFilter{OwnerIDs: ownerIDs})
	if err != nil {
		return 0, fmt.Errorf("load receivables: %w", err)
	}

	now := time.Now()
	settings := clients.MailSettings{
		FromName:  s.mailCfg.FromName,
		FromEmail: s.mailCfg.FromEmail,
	}

	var (
		batch []clients.MailItem
		sent  []sentReminder
		byID  = map[string]domain.Client{}
	)
	for _, st := range states {
		if len(targeted) > 0 && !targeted[st.Client.ID] {
			continue
		}
		byID[st.Client.ID] = st.Client
	}

	for _, r := range receivables {
		c, ok := byID[r.ClientID]
		if !ok || r.Status == domain.StatusPaid || !r.Overdue(now) {
			continue
		}
		// already escalated out of the reminder ladder; a routine relance
		// would downgrade its status
		if r.Status == domain.StatusLegal {
			continue
		}

		step := domain.ClassifyStep(r.DueDate, now, r.Client)
		if step == nil {
			continue
		}

		item := clients.MailItem{
			Settings: settings,
			To:       c.Email,
			Subject:  stepSubject[*step],
			HTML:     reminderBody(c, r, *step),
		}

		if r.InvoicePDFKey != nil && s.s3 != nil {
			url, err := s.s3.GetTemporaryURL(ctx, *r.InvoicePDFKey, 48*time.Hour)
			if err != nil {
				log.Printf("[REMINDER] presign invoice pdf error: %v", err)
			} else {
				item.InvoicePDFURL = url
			}
		}

		batch = append(batch, item)
		sent = append(sent, sentReminder{receivableID: r.ID, step: *step})
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := s.mailer.SendBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("dispatch reminders: %w", err)
	}

	for _, sr := range sent {
		if err := s.receivables.UpdateStatus(ctx, sr.receivableID, stepStatus[sr.step], ownerIDs); err != nil {
			log.Printf("[REMINDER] status update error for %s: %v", sr.receivableID, err)
		}
	}

	return len(batch), nil
}

type sentReminder struct {
	receivableID string
	step         domain.ReminderStep
}

func reminderBody(c domain.Client, r domain.Receivable, step domain.ReminderStep) string {
	daysLate := domain.DaysLate(r.DueDate, time.Now())
	return fmt.Sprintf(
		`<p>Bonjour %s,</p>
<p>Sauf erreur de notre part, la facture <strong>%s</strong> d'un montant de <strong>%.2f €</strong>, échue le %s (%d jours de retard), reste impayée.</p>
<p>Nous vous remercions de bien vouloir procéder à son règlement dans les meilleurs délais.</p>`,
		c.Name,
		r.InvoiceNumber,
		r.Outstanding(),
		r.DueDate.Format("02/01/2006"),
		daysLate,
	)
}
