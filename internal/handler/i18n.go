package handler

import "github.com/mindwell/internal/locale"

// 面向用户的错误提示，按请求语言选择。
var messageCatalog = map[string]map[string]string{
	"invalid_payload": {
		locale.LanguageEnglish: "Invalid request body",
		locale.LanguageHindi:   "अमान्य अनुरोध",
		locale.LanguageMarathi: "अवैध विनंती",
	},
	"invalid_task_id": {
		locale.LanguageEnglish: "Invalid task id",
		locale.LanguageHindi:   "अमान्य कार्य आईडी",
		locale.LanguageMarathi: "अवैध कार्य आयडी",
	},
	"task_not_found": {
		locale.LanguageEnglish: "Task not found",
		locale.LanguageHindi:   "कार्य नहीं मिला",
		locale.LanguageMarathi: "कार्य सापडले नाही",
	},
	"task_title_required": {
		locale.LanguageEnglish: "Please enter a task title",
		locale.LanguageHindi:   "कृपया कार्य का शीर्षक दर्ज करें",
		locale.LanguageMarathi: "कृपया कार्याचे शीर्षक लिहा",
	},
	"task_category_invalid": {
		locale.LanguageEnglish: "Unknown task category",
		locale.LanguageHindi:   "अज्ञात श्रेणी",
		locale.LanguageMarathi: "अज्ञात श्रेणी",
	},
	"mood_required": {
		locale.LanguageEnglish: "Please choose how you feel",
		locale.LanguageHindi:   "कृपया अपना मूड चुनें",
		locale.LanguageMarathi: "कृपया तुमचा मूड निवडा",
	},
	"mood_date_invalid": {
		locale.LanguageEnglish: "Dates use the YYYY-MM-DD format",
		locale.LanguageHindi:   "तारीख YYYY-MM-DD प्रारूप में होनी चाहिए",
		locale.LanguageMarathi: "तारीख YYYY-MM-DD स्वरूपात असावी",
	},
	"mood_not_found": {
		locale.LanguageEnglish: "No entry for this date",
		locale.LanguageHindi:   "इस तारीख की कोई प्रविष्टि नहीं",
		locale.LanguageMarathi: "या तारखेची नोंद नाही",
	},
	"message_required": {
		locale.LanguageEnglish: "Message cannot be empty",
		locale.LanguageHindi:   "संदेश खाली नहीं हो सकता",
		locale.LanguageMarathi: "संदेश रिकामा असू शकत नाही",
	},
	"speech_unsupported": {
		locale.LanguageEnglish: "Speech recognition is not supported on this device",
		locale.LanguageHindi:   "इस डिवाइस पर वाक् पहचान समर्थित नहीं है",
		locale.LanguageMarathi: "या उपकरणावर आवाज ओळख उपलब्ध नाही",
	},
	"speech_no_transcript": {
		locale.LanguageEnglish: "I didn't catch that, please try again",
		locale.LanguageHindi:   "मैं सुन नहीं पाया, कृपया फिर से कोशिश करें",
		locale.LanguageMarathi: "मला ऐकू आले नाही, कृपया पुन्हा प्रयत्न करा",
	},
	"save_failed": {
		locale.LanguageEnglish: "Could not save your changes",
		locale.LanguageHindi:   "बदलाव सहेजे नहीं जा सके",
		locale.LanguageMarathi: "बदल जतन करता आले नाहीत",
	},
	"settings_unavailable": {
		locale.LanguageEnglish: "Settings are not available with the current storage",
		locale.LanguageHindi:   "वर्तमान संग्रहण के साथ सेटिंग्स उपलब्ध नहीं हैं",
		locale.LanguageMarathi: "सध्याच्या संचयनासह सेटिंग्ज उपलब्ध नाहीत",
	},
}

func localizedMessage(language, key string) string {
	texts, ok := messageCatalog[key]
	if !ok {
		return key
	}
	return locale.Pick(language, texts)
}
