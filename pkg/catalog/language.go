package catalog

// Language is a detected technology key. The zero value LanguageNone means
// no technology was recognized.
type Language string

// Recognized technology keys.
const (
	LanguageNone       Language = ""
	LanguageReact      Language = "react"
	LanguageJava       Language = "java"
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageNode       Language = "node"
	LanguagePython     Language = "python"
	LanguageGo         Language = "go"
	LanguageRuby       Language = "ruby"
	LanguageRust       Language = "rust"
	LanguageSwift      Language = "swift"
	LanguageKotlin     Language = "kotlin"
	LanguageVue        Language = "vue"
	LanguageAngular    Language = "angular"
	LanguageCPP        Language = "cpp"
	LanguageC          Language = "c"
	LanguageCSharp     Language = "csharp"
	LanguagePHP        Language = "php"
	LanguageSQL        Language = "sql"
)

// Languages lists every recognized key except LanguageNone.
var Languages = []Language{
	LanguageReact, LanguageJava, LanguageTypeScript, LanguageJavaScript,
	LanguageNode, LanguagePython, LanguageGo, LanguageRuby, LanguageRust,
	LanguageSwift, LanguageKotlin, LanguageVue, LanguageAngular, LanguageCPP,
	LanguageC, LanguageCSharp, LanguagePHP, LanguageSQL,
}

var labels = map[Language]string{
	LanguageReact:      "React",
	LanguageJava:       "Java",
	LanguageTypeScript: "TypeScript",
	LanguageJavaScript: "JavaScript",
	LanguageNode:       "Node.js",
	LanguagePython:     "Python",
	LanguageGo:         "Go",
	LanguageRuby:       "Ruby",
	LanguageRust:       "Rust",
	LanguageSwift:      "Swift",
	LanguageKotlin:     "Kotlin",
	LanguageVue:        "Vue",
	LanguageAngular:    "Angular",
	LanguageCPP:        "C++",
	LanguageC:          "C",
	LanguageCSharp:     "C#",
	LanguagePHP:        "PHP",
	LanguageSQL:        "SQL",
}

// Label returns the human-readable name of l, or the raw key when l is not
// a recognized language.
func (l Language) Label() string {
	if label, ok := labels[l]; ok {
		return label
	}
	return string(l)
}

// Valid reports whether l is one of the recognized keys.
func (l Language) Valid() bool {
	_, ok := labels[l]
	return ok
}

var conceptQuestions = map[Language]string{
	LanguageJava:       "オブジェクト指向についての説明とかできますでしょうか？",
	LanguageReact:      "Reactの仮想DOMと再レンダリングの仕組みを簡潔に説明し、パフォーマンス最適化の具体例を1つ挙げてください。",
	LanguageJavaScript: "JavaScriptのイベントループと非同期処理（microtask / macrotask）の違いを端的に説明してください。",
	LanguageTypeScript: "TypeScriptを導入する利点を型システムの観点から1つ挙げ、簡単な具体例を示してください。",
	LanguagePython:     "PythonのGIL（グローバルインタプリタロック）とは何か、並行処理へ与える影響を説明してください。",
	LanguageGo:         "Goのgoroutineとchannelの基本を説明し、典型的な使い所を1つ挙げてください。",
	LanguageRuby:       "Ruby（Rails）のMVCとバリデーション／コールバックの役割を簡潔に説明してください。",
	LanguageRust:       "Rustの所有権と借用の概念を端的に説明してください。",
	LanguageNode:       "Node.jsのノンブロッキングI/Oモデルについて説明し、ブロッキングを避ける実装上の注意を1つ挙げてください。",
	LanguageSQL:        "データベース正規化（第1〜第3正規形）の要点を簡潔に説明し、インデックス設計の注意点を1つ挙げてください。",
	LanguageSwift:      "SwiftのOptionalと安全なアンラップ（if let / guard let）について説明してください。",
	LanguageKotlin:     "Kotlinのnull安全とデータクラスの利点を説明してください。",
	LanguageVue:        "Vueのリアクティブシステム（ref/reactive）の仕組みを説明してください。",
	LanguageAngular:    "Angularの依存性注入（DI）の仕組みを簡潔に説明してください。",
}

// ConceptQuestion returns the technology-specific follow-up for l. The second
// result is false when l has no concept question, including LanguageNone.
func ConceptQuestion(l Language) (string, bool) {
	q, ok := conceptQuestions[l]
	return q, ok
}
