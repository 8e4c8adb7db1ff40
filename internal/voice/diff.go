package voice

import (
	"github.com/rs/zerolog"

	"glas/internal/input"
	"glas/internal/metrics"
)

// Edit - правка, переводящая старый текст в новый.
type Edit struct {
	// Common - длина общего префикса в символах.
	Common int
	// Delete - сколько символов стереть с конца старого текста.
	Delete int
	// Append - что дописать после стирания.
	Append string
}

// Diff сравнивает тексты посимвольно (по рунам) и возвращает правку:
// стереть расходящийся хвост старого текста и дописать хвост нового.
// Это не diff по расстоянию редактирования: промежуточные результаты
// распознавания обычно уточняют конец фразы, поэтому общего префикса хватает.
func Diff(oldText, newText string) Edit {
	oldRunes := []rune(oldText)
	newRunes := []rune(newText)

	common := 0
	for common < len(oldRunes) && common < len(newRunes) && oldRunes[common] == newRunes[common] {
		common++
	}

	return Edit{
		Common: common,
		Delete: len(oldRunes) - common,
		Append: string(newRunes[common:]),
	}
}

// applyEdit выполняет правку. Ошибки логируются, сессия продолжается.
func applyEdit(text input.TextAction, e Edit, logger zerolog.Logger) {
	if e.Delete > 0 {
		err := text.DeleteChars(e.Delete)
		metrics.TextAction("delete", err)
		if err != nil {
			logger.Warn().Err(err).Int("count", e.Delete).Msg("Ошибка удаления символов")
		}
	}
	if e.Append != "" {
		err := text.Insert(e.Append)
		metrics.TextAction("insert", err)
		if err != nil {
			logger.Warn().Err(err).Msg("Ошибка вставки текста")
		}
	}
}
