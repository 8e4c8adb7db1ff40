// Package speech предоставляет потоковое распознавание речи.
package speech

// Kind тип ответа распознавания.
type Kind int

const (
	// KindInterim - промежуточный результат, может измениться.
	KindInterim Kind = iota
	// KindFinal - окончательный результат фразы.
	KindFinal
	// KindFinished - сессия распознавания завершена.
	KindFinished
	// KindError - ошибка сессии.
	KindError
)

// String возвращает название типа (для логов и метрик).
func (k Kind) String() string {
	switch k {
	case KindInterim:
		return "interim"
	case KindFinal:
		return "final"
	case KindFinished:
		return "finished"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Response - один ответ из потока распознавания.
type Response struct {
	Kind Kind
	// Text заполнен для KindInterim и KindFinal.
	Text string
	// Message заполнен для KindError.
	Message string
}

// Interim создаёт промежуточный результат.
func Interim(text string) Response { return Response{Kind: KindInterim, Text: text} }

// Final создаёт окончательный результат.
func Final(text string) Response { return Response{Kind: KindFinal, Text: text} }

// Finished создаёт ответ о завершении сессии.
func Finished() Response { return Response{Kind: KindFinished} }

// Failed создаёт ответ об ошибке.
func Failed(msg string) Response { return Response{Kind: KindError, Message: msg} }
