package processing

const welcomeText = "👋 Добро пожаловать в бота для обработки аудио!\n\n" +
	"Отправьте мне любой аудиофайл или голосовое сообщение, и я могу:\n" +
	"- Ускорить или замедлить его\n" +
	"- Настроить громкость\n" +
	"- Конвертировать между форматами\n\n" +
	"Используйте /help для получения информации о доступных командах."

const helpText = "🎵 Помощь по боту обработки аудио:\n\n" +
	"Просто отправьте мне аудиофайл или голосовое сообщение.\n" +
	"Добавьте эти подписи для разных эффектов:\n" +
	"- 'speed:1.5' - Ускорить в 1.5 раза\n" +
	"- 'speed:0.5' - Замедлить в 2 раза\n" +
	"- 'convert:mp3' - Конвертировать в MP3\n" +
	"- 'convert:wav' - Конвертировать в WAV"

const (
	processingText = "🎵 Обрабатываю ваше аудио..."
	resultCaption  = "✨ Вот ваше обработанное аудио!"
)

const (
	msgTransportFailed = "Извините, не удалось получить или отправить файл"
	msgDecodeFailed    = "Извините, не удалось прочитать аудио"
	msgParseFailed     = "Извините, не удалось разобрать подпись"
	msgEncodeFailed    = "Извините, не удалось сохранить обработанное аудио"
)
