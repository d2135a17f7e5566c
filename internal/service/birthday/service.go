package birthday

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/churchcomm/admin-api/internal/email"
	"github.com/churchcomm/admin-api/internal/gateway/termii"
	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository"
	apperrors "github.com/churchcomm/admin-api/pkg/errors"
	"github.com/churchcomm/admin-api/pkg/htmltext"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/metrics"
)

// DefaultSendTime is when the daily job fires unless a church configures
// otherwise.
const DefaultSendTime = "08:10"

// Gateway sends SMS through the provider.
type Gateway interface {
	SendBulkSMS(ctx context.Context, recipients []string, body string, startFromChunk int) (*termii.BulkResult, error)
}

// EmailSender delivers birthday email.
type EmailSender interface {
	SendBulk(ctx context.Context, recipients []string, subject, text, html string) (*email.BulkEmailResult, error)
	SendCustom(ctx context.Context, to, subject, text, html string) error
}

// Service manages birthday automation: per-church config, listings, and
// the daily dispatch job.
type Service interface {
	GetConfig(ctx context.Context, churchID uuid.UUID) (*model.BirthdayConfig, error)
	UpsertConfig(ctx context.Context, churchID uuid.UUID, req *model.UpsertBirthdayConfigRequest) (*model.BirthdayConfig, error)
	DeleteConfig(ctx context.Context, churchID uuid.UUID) error

	ListToday(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error)
	ListMonth(ctx context.Context, churchID uuid.UUID, month time.Month) ([]*model.Contact, error)
	ListUpcoming(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error)

	TestSend(ctx context.Context, churchID uuid.UUID, req *model.BirthdayTestSendRequest) error
	RunDailyJob(ctx context.Context, now time.Time) ([]*model.BirthdayDispatchResult, error)
}

type service struct {
	contacts  repository.ContactRepository
	configs   repository.BirthdayConfigRepository
	templates repository.TemplateRepository
	gateway   Gateway
	email     EmailSender
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(
	contacts repository.ContactRepository,
	configs repository.BirthdayConfigRepository,
	templates repository.TemplateRepository,
	gateway Gateway,
	emailSender EmailSender,
	m *metrics.Metrics,
	logger *logger.Logger,
) Service {
	return &service{
		contacts:  contacts,
		configs:   configs,
		templates: templates,
		gateway:   gateway,
		email:     emailSender,
		metrics:   m,
		logger:    logger,
	}
}

func (s *service) GetConfig(ctx context.Context, churchID uuid.UUID) (*model.BirthdayConfig, error) {
	return s.configs.Get(ctx, churchID)
}

// UpsertConfig writes the single config row for a church. The selected
// channels must all be supported by the referenced template.
func (s *service) UpsertConfig(ctx context.Context, churchID uuid.UUID, req *model.UpsertBirthdayConfigRequest) (*model.BirthdayConfig, error) {
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, apperrors.Validation("invalid template id", "template_id")
	}
	template, err := s.templates.Get(ctx, churchID, templateID)
	if err != nil {
		return nil, err
	}
	for _, ch := range req.SelectedChannels {
		if !template.SupportsChannel(ch) {
			return nil, apperrors.Validation(
				fmt.Sprintf("template %q does not support channel %q", template.Name, ch),
				"selected_channels")
		}
	}

	sendTime := req.SendTime
	if sendTime == "" {
		sendTime = DefaultSendTime
	}

	config := &model.BirthdayConfig{
		ChurchID:         churchID,
		Enabled:          req.Enabled,
		TemplateID:       &templateID,
		SelectedChannels: req.SelectedChannels,
		SendTime:         sendTime,
	}
	if err := s.configs.Upsert(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *service) DeleteConfig(ctx context.Context, churchID uuid.UUID) error {
	return s.configs.Delete(ctx, churchID)
}

func (s *service) ListToday(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error) {
	day, month := dayMonth(time.Now())
	return s.contacts.ListActiveByBirthday(ctx, churchID, day, month)
}

func (s *service) ListMonth(ctx context.Context, churchID uuid.UUID, month time.Month) ([]*model.Contact, error) {
	return s.contacts.ListActiveByBirthMonth(ctx, churchID, strconv.Itoa(int(month)))
}

// ListUpcoming returns the rest of this month's birthdays, today excluded,
// ordered by day.
func (s *service) ListUpcoming(ctx context.Context, churchID uuid.UUID) ([]*model.Contact, error) {
	now := time.Now()
	contacts, err := s.contacts.ListActiveByBirthMonth(ctx, churchID, strconv.Itoa(int(now.Month())))
	if err != nil {
		return nil, err
	}

	var upcoming []*model.Contact
	for _, c := range contacts {
		if c.BirthDay == nil {
			continue
		}
		if day, err := strconv.Atoi(*c.BirthDay); err == nil && day > now.Day() {
			upcoming = append(upcoming, c)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		di, _ := strconv.Atoi(*upcoming[i].BirthDay)
		dj, _ := strconv.Atoi(*upcoming[j].BirthDay)
		return di < dj
	})
	return upcoming, nil
}

// TestSend delivers the configured birthday template to one contact over
// one channel so an admin can verify the setup.
func (s *service) TestSend(ctx context.Context, churchID uuid.UUID, req *model.BirthdayTestSendRequest) error {
	config, err := s.configs.Get(ctx, churchID)
	if err != nil {
		return err
	}
	if config.TemplateID == nil {
		return apperrors.Validation("no birthday template configured", "template_id")
	}
	template, err := s.templates.Get(ctx, churchID, *config.TemplateID)
	if err != nil {
		return err
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return apperrors.Validation("invalid contact id", "contact_id")
	}
	contact, err := s.contacts.Get(ctx, churchID, contactID)
	if err != nil {
		return err
	}

	switch model.Channel(req.Channel) {
	case model.ChannelSMS:
		if contact.Phone == "" {
			return apperrors.Validation("contact has no phone number", "contact_id")
		}
		_, err := s.gateway.SendBulkSMS(ctx, []string{contact.Phone}, htmltext.Strip(template.Content), 1)
		return err
	case model.ChannelEmail:
		if contact.Email == nil || *contact.Email == "" {
			return apperrors.Validation("contact has no email address", "contact_id")
		}
		return s.email.SendCustom(ctx, *contact.Email, "Happy Birthday!",
			htmltext.Strip(template.Content), template.Content)
	}
	return apperrors.Validation("unsupported channel", "channel")
}

// group keys birthday dispatch batches.
type groupKey struct {
	churchID   uuid.UUID
	templateID uuid.UUID
}

type dispatchGroup struct {
	config   *model.BirthdayConfig
	template *model.Template
	contacts []*model.Contact
}

// RunDailyJob finds everyone whose birthday is today across all churches
// and dispatches the configured template per church. Config and template
// lookups are cached for the duration of the run. A failing group or
// channel never stops the others.
func (s *service) RunDailyJob(ctx context.Context, now time.Time) ([]*model.BirthdayDispatchResult, error) {
	if s.metrics != nil {
		s.metrics.BirthdayRuns.Inc()
	}

	day, month := dayMonth(now)
	contacts, err := s.contacts.ListByBirthdayAllChurches(ctx, day, month)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		s.logger.Info("no birthdays today", "day", day, "month", month)
		return nil, nil
	}
	s.logger.Info("birthday job starting",
		"day", day, "month", month, "contacts", len(contacts))

	cache := gocache.New(10*time.Minute, time.Hour)
	groups := make(map[groupKey]*dispatchGroup)
	order := make([]groupKey, 0)

	for _, contact := range contacts {
		config, err := s.cachedConfig(ctx, cache, contact.ChurchID)
		if err != nil {
			s.logger.Error(err, "failed to load birthday config", "church_id", contact.ChurchID)
			continue
		}
		if config == nil || !config.Enabled || config.TemplateID == nil {
			continue
		}
		template, err := s.cachedTemplate(ctx, cache, contact.ChurchID, *config.TemplateID)
		if err != nil {
			s.logger.Error(err, "failed to load birthday template",
				"church_id", contact.ChurchID, "template_id", config.TemplateID)
			continue
		}
		if template == nil {
			continue
		}

		key := groupKey{churchID: contact.ChurchID, templateID: template.ID}
		g, ok := groups[key]
		if !ok {
			g = &dispatchGroup{config: config, template: template}
			groups[key] = g
			order = append(order, key)
		}
		g.contacts = append(g.contacts, contact)
	}

	results := make([]*model.BirthdayDispatchResult, 0, len(order))
	for _, key := range order {
		results = append(results, s.dispatchGroup(ctx, key, groups[key]))
	}
	return results, nil
}

func (s *service) dispatchGroup(ctx context.Context, key groupKey, g *dispatchGroup) *model.BirthdayDispatchResult {
	result := &model.BirthdayDispatchResult{ChurchID: key.churchID, TemplateID: key.templateID}
	selected := make(map[string]bool, len(g.config.SelectedChannels))
	for _, ch := range g.config.SelectedChannels {
		selected[ch] = true
	}

	if selected[string(model.ChannelSMS)] && g.template.SupportsChannel(string(model.ChannelSMS)) {
		var phones []string
		for _, c := range g.contacts {
			if c.Phone != "" {
				phones = append(phones, c.Phone)
			}
		}
		if len(phones) > 0 {
			cr := &model.ChannelDispatchResult{}
			if _, err := s.gateway.SendBulkSMS(ctx, phones, htmltext.Strip(g.template.Content), 1); err != nil {
				cr.Error = err.Error()
				s.logger.Error(err, "birthday sms dispatch failed", "church_id", key.churchID)
			} else {
				cr.Success = true
				cr.Sent = len(phones)
				s.countSent(string(model.ChannelSMS), len(phones))
			}
			result.SMS = cr
		}
	}

	if selected[string(model.ChannelEmail)] && g.template.SupportsChannel(string(model.ChannelEmail)) {
		var addrs []string
		for _, c := range g.contacts {
			if c.Email != nil && *c.Email != "" {
				addrs = append(addrs, *c.Email)
			}
		}
		if len(addrs) > 0 {
			cr := &model.ChannelDispatchResult{}
			res, err := s.email.SendBulk(ctx, addrs, "Happy Birthday!",
				htmltext.Strip(g.template.Content), g.template.Content)
			switch {
			case err != nil:
				cr.Error = err.Error()
				s.logger.Error(err, "birthday email dispatch failed", "church_id", key.churchID)
			case !res.Success:
				cr.Error = fmt.Sprintf("%d of %d email batches failed",
					res.FailedBatches, res.FailedBatches+res.SuccessfulBatches)
				cr.Sent = res.TotalRecipients
			default:
				cr.Success = true
				cr.Sent = len(addrs)
				s.countSent(string(model.ChannelEmail), len(addrs))
			}
			result.Email = cr
		}
	}

	return result
}

func (s *service) cachedConfig(ctx context.Context, cache *gocache.Cache, churchID uuid.UUID) (*model.BirthdayConfig, error) {
	key := "config:" + churchID.String()
	if v, ok := cache.Get(key); ok {
		config, _ := v.(*model.BirthdayConfig)
		return config, nil
	}
	config, err := s.configs.Get(ctx, churchID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			cache.SetDefault(key, (*model.BirthdayConfig)(nil))
			return nil, nil
		}
		return nil, err
	}
	cache.SetDefault(key, config)
	return config, nil
}

func (s *service) cachedTemplate(ctx context.Context, cache *gocache.Cache, churchID, templateID uuid.UUID) (*model.Template, error) {
	key := "template:" + templateID.String()
	if v, ok := cache.Get(key); ok {
		template, _ := v.(*model.Template)
		return template, nil
	}
	template, err := s.templates.Get(ctx, churchID, templateID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			cache.SetDefault(key, (*model.Template)(nil))
			return nil, nil
		}
		return nil, err
	}
	cache.SetDefault(key, template)
	return template, nil
}

func (s *service) countSent(channel string, n int) {
	if s.metrics != nil {
		s.metrics.BirthdayMessages.WithLabelValues(channel).Add(float64(n))
	}
}

func dayMonth(t time.Time) (string, string) {
	return strconv.Itoa(t.Day()), strconv.Itoa(int(t.Month()))
}
