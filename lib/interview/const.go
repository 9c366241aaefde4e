package interviewhandler

const (
	// Сентинел завершения интервью от сервиса генерации вопросов
	finishedSentinel = "FINISHED"

	// Ответ-заглушка, когда ни распознавание, ни транскрибация ничего не дали
	placeholderAnswer = "[cevap alınamadı]"

	// Вопрос-извинение при сбое получения следующего вопроса,
	// в историю диалога не попадает
	retryQuestionText = "Üzgünüm, kısa bir teknik sorun yaşadık. Lütfen son cevabınızı tekrar edebilir misiniz?"

	// Версия текста юридического согласия
	consentTextVersion = "v1"

	// Содержимое стартового системного сообщения, sequence_number 0
	initialSystemMessage = "interview session initialized"

	roleAssistant = "assistant"
	roleUser      = "user"
	roleSystem    = "system"

	signalVeryShortAnswer = "very_short_answer"
)
