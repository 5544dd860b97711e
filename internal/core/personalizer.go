// ABOUTME: Personalization document builder
// ABOUTME: Regenerates named sections from profile data, preserving the LLM preamble
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/soberpath/recall/internal/models"
	"github.com/soberpath/recall/internal/storage/sqlite"
)

// Section headers of the personalization document. Rebuilds replace
// everything from the first known header onward; text before it is the
// preamble accumulated from past profile analyses.
const (
	headerInstruction = "=== ИНСТРУКЦИЯ ДЛЯ БОТА ==="
	headerOnboarding  = "=== ДАННЫЕ ОНБОРДИНГА (СТАРТОВАЯ ИНФОРМАЦИЯ) ==="
	headerProfile     = "=== ИНФОРМАЦИЯ ИЗ ПРОФИЛЯ ПОЛЬЗОВАТЕЛЯ (ТОЧНЫЕ ОТВЕТЫ) ==="
	headerSteps       = "=== ОТВЕТЫ ПО ШАГАМ (РАБОТА ПО ПРОГРАММЕ) ==="
	headerGratitudes  = "=== БЛАГОДАРНОСТИ ==="
	headerDaily       = "=== ЕЖЕДНЕВНЫЙ САМОАНАЛИЗ ==="
	headerChat        = "=== ИНФОРМАЦИЯ ИЗ ОБЫЧНОГО ОБЩЕНИЯ ==="
)

const instructionText = `Используй информацию ниже, чтобы отвечать лично этому пользователю.
Не пересказывай профиль и не зачитывай его вслух — опирайся на него.
Говори тепло, на равных, без осуждения и без давления.`

// Data limits per section
const (
	gratitudeLimit = 20
	dailyLimit     = 10
	chatFetchLimit = 20
	chatKeepLimit  = 10
	chatMinRunes   = 10
	chatMaxRunes   = 200
	entryShown     = 3
)

var knownHeaders = []string{
	headerInstruction,
	headerOnboarding,
	headerProfile,
	headerSteps,
	headerGratitudes,
	headerDaily,
	headerChat,
}

var experienceLabels = map[string]string{
	models.ExperienceNewbie:   "новичок в программе",
	models.ExperienceFamiliar: "знаком с программой",
	models.ExperienceWorking:  "работает по шагам",
	models.ExperienceVeteran:  "давно в программе",
}

// SummarizeProvider is the slice of the LLM client the personalizer needs
type SummarizeProvider interface {
	Summarize(ctx context.Context, info string) (string, error)
}

// Personalizer rebuilds the per-user personalization document
type Personalizer struct {
	store    *sqlite.Storage
	provider SummarizeProvider
	log      zerolog.Logger
}

// NewPersonalizer creates a Personalizer
func NewPersonalizer(store *sqlite.Storage, provider SummarizeProvider, log zerolog.Logger) *Personalizer {
	return &Personalizer{
		store:    store,
		provider: provider,
		log:      log.With().Str("component", "personalizer").Logger(),
	}
}

// Rebuild regenerates the document from stored profile data only
func (p *Personalizer) Rebuild(ctx context.Context, userID int64) (string, error) {
	return p.RebuildWithAnalysis(ctx, userID, models.ProfileAnalysis{})
}

// RebuildWithAnalysis regenerates the document. When the analysis says
// the triggering message carried new information, a summarized line is
// appended to the preamble. The preamble concatenates across rebuilds:
// it is the running history of what the analyses extracted.
// The stored document is replaced in one write after full assembly;
// a failed rebuild leaves the previous document untouched.
func (p *Personalizer) RebuildWithAnalysis(ctx context.Context, userID int64, analysis models.ProfileAnalysis) (string, error) {
	user, err := p.store.Users.GetByID(userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	preamble := extractPreamble(user.PersonalPrompt)

	if analysis.UpdateNeeded && analysis.ExtractedInfo != "" {
		summary, err := p.provider.Summarize(ctx, analysis.ExtractedInfo)
		if err != nil {
			p.log.Warn().Err(err).Msg("summarize failed, rebuilding without new preamble line")
		} else if summary != "" {
			if preamble != "" {
				preamble += "\n"
			}
			preamble += summary
		}
	}

	sections := []string{
		headerInstruction + "\n" + instructionText,
		p.renderOnboarding(user),
	}
	for _, render := range []func(int64) (string, error){
		p.renderProfile,
		p.renderSteps,
		p.renderGratitudes,
		p.renderDaily,
		p.renderChat,
	} {
		section, err := render(userID)
		if err != nil {
			return "", err
		}
		if section != "" {
			sections = append(sections, section)
		}
	}

	parts := make([]string, 0, len(sections)+1)
	if preamble != "" {
		parts = append(parts, preamble)
	}
	parts = append(parts, sections...)
	document := strings.Join(parts, "\n\n")

	if err := p.store.Users.SetPersonalPrompt(userID, document); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}

	p.log.Info().Int64("user", userID).Int("size", len(document)).Msg("personalization rebuilt")
	return document, nil
}

// extractPreamble returns everything before the first known section
// header. A document without headers is all preamble.
func extractPreamble(document string) string {
	if document == "" {
		return ""
	}
	cut := len(document)
	for _, header := range knownHeaders {
		if idx := strings.Index(document, header); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(document[:cut])
}

func (p *Personalizer) renderOnboarding(user *models.User) string {
	var b strings.Builder
	b.WriteString(headerOnboarding + "\n")

	if !user.Onboarded() {
		b.WriteString("Пользователь еще не прошел онбординг.")
		return b.String()
	}

	fmt.Fprintf(&b, "Имя: %s\n", user.DisplayName)
	if label, ok := experienceLabels[user.ProgramExperience]; ok {
		fmt.Fprintf(&b, "Опыт в программе: %s\n", label)
	} else if user.ProgramExperience != "" {
		fmt.Fprintf(&b, "Опыт в программе: %s\n", user.ProgramExperience)
	}
	if user.SobrietyDate != "" {
		fmt.Fprintf(&b, "Дата трезвости: %s\n", user.SobrietyDate)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Personalizer) renderProfile(userID int64) (string, error) {
	answers, err := p.store.Profile.LatestAnswers(userID)
	if err != nil {
		return "", fmt.Errorf("load profile answers: %w", err)
	}
	entries, err := p.store.Profile.Entries(userID)
	if err != nil {
		return "", fmt.Errorf("load profile entries: %w", err)
	}
	if len(answers) == 0 && len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(headerProfile + "\n")

	currentSection := ""
	for _, answer := range answers {
		if answer.SectionName != currentSection {
			currentSection = answer.SectionName
			fmt.Fprintf(&b, "[%s]\n", currentSection)
		}
		fmt.Fprintf(&b, "Вопрос: %s\n", answer.QuestionText)
		fmt.Fprintf(&b, "Ответ: %s\n", answer.AnswerText)
	}

	b.WriteString(renderEntryGroups(entries))
	return strings.TrimRight(b.String(), "\n"), nil
}

// renderEntryGroups renders free-text entries grouped by section and
// sub-block: the newest entry as current, up to two more as previous,
// the rest as a count.
func renderEntryGroups(entries []models.SectionEntry) string {
	var b strings.Builder

	currentSection := ""
	i := 0
	for i < len(entries) {
		entry := entries[i]
		if entry.SectionName != currentSection {
			currentSection = entry.SectionName
			fmt.Fprintf(&b, "[%s]\n", currentSection)
		}

		j := i
		for j < len(entries) && entries[j].SectionName == entry.SectionName && entries[j].Subblock == entry.Subblock {
			j++
		}
		group := entries[i:j]

		label := entry.Subblock
		if label == "" {
			label = "общее"
		}
		if entry.EntityType != "" {
			fmt.Fprintf(&b, "  • %s (%s):\n", label, entry.EntityType)
		} else {
			fmt.Fprintf(&b, "  • %s:\n", label)
		}

		for k, e := range group {
			if k >= entryShown {
				fmt.Fprintf(&b, "    ... и ещё %d записей\n", len(group)-entryShown)
				break
			}
			if k == 0 {
				fmt.Fprintf(&b, "    Сейчас: %s\n", e.Content)
			} else {
				fmt.Fprintf(&b, "    Ранее: %s\n", e.Content)
			}
		}

		i = j
	}

	return b.String()
}

func (p *Personalizer) renderSteps(userID int64) (string, error) {
	answers, err := p.store.Profile.StepAnswers(userID)
	if err != nil {
		return "", fmt.Errorf("load step answers: %w", err)
	}
	if len(answers) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(headerSteps + "\n")

	currentStep := -1
	for _, answer := range answers {
		if answer.StepNumber != currentStep {
			currentStep = answer.StepNumber
			title := answer.StepTitle
			if title == "" {
				title = fmt.Sprintf("Шаг %d", answer.StepNumber)
			} else {
				title = fmt.Sprintf("%s (Шаг %d)", title, answer.StepNumber)
			}
			fmt.Fprintf(&b, "[%s]\n", title)
		}
		fmt.Fprintf(&b, "Вопрос: %s\n", answer.QuestionText)
		fmt.Fprintf(&b, "Ответ: %s\n", answer.AnswerText)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (p *Personalizer) renderGratitudes(userID int64) (string, error) {
	gratitudes, err := p.store.Profile.RecentGratitudes(userID, gratitudeLimit)
	if err != nil {
		return "", fmt.Errorf("load gratitudes: %w", err)
	}
	if len(gratitudes) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(headerGratitudes + "\n")
	for _, g := range gratitudes {
		fmt.Fprintf(&b, "- %s\n", g.Text)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (p *Personalizer) renderDaily(userID int64) (string, error) {
	analyses, err := p.store.Profile.RecentCompletedAnalyses(userID, dailyLimit)
	if err != nil {
		return "", fmt.Errorf("load daily analyses: %w", err)
	}
	if len(analyses) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(headerDaily + "\n")
	for _, analysis := range analyses {
		fmt.Fprintf(&b, "[%s]\n", analysis.Date.Format("02.01.2006"))
		for _, answer := range analysis.Answers {
			fmt.Fprintf(&b, "Вопрос %d: %s\n", answer.QuestionNumber, answer.AnswerText)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (p *Personalizer) renderChat(userID int64) (string, error) {
	messages, err := p.store.Messages.RecentUserMessages(userID, chatFetchLimit)
	if err != nil {
		return "", fmt.Errorf("load chat messages: %w", err)
	}

	var highlights []string
	for _, m := range messages {
		runes := []rune(strings.TrimSpace(m.Content))
		if len(runes) <= chatMinRunes {
			continue
		}
		if len(runes) > chatMaxRunes {
			runes = runes[:chatMaxRunes]
		}
		highlights = append(highlights, string(runes))
		if len(highlights) == chatKeepLimit {
			break
		}
	}
	if len(highlights) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(headerChat + "\n")
	for _, h := range highlights {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
