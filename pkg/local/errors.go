package local

// Error kinds as reported by the assistant client.
const (
	KindMissingCredential      = "missing_credential"
	KindNetworkFailure         = "network_failure"
	KindInvalidResponse        = "invalid_response"
	KindContentFiltered        = "content_filtered"
	KindRateLimited            = "rate_limited"
	KindImageProcessingFailure = "image_processing_failure"
	KindGeneral                = "general"
	KindInvalidInput           = "invalid_input"
)

var errorTexts = map[string]TextSet{
	KindMissingCredential: NewSet(
		"⚠️ Configuración de API no encontrada. Verifica tu clave de API.",
		NewTrans(En, "⚠️ API configuration not found. Check your API key."),
		NewTrans(Fr, "⚠️ Configuration de l'API introuvable. Vérifiez votre clé d'API."),
		NewTrans(Zh, "⚠️ 未找到 API 配置。请检查你的 API 密钥。"),
	),
	KindNetworkFailure: NewSet(
		"🌐 Error de conexión. Verifica tu conexión a internet.",
		NewTrans(En, "🌐 Connection error. Check your internet connection."),
		NewTrans(Fr, "🌐 Erreur de connexion. Vérifiez votre connexion internet."),
		NewTrans(Zh, "🌐 连接错误。请检查你的网络连接。"),
	),
	KindInvalidResponse: NewSet(
		"❌ Respuesta inválida del servidor. Intenta nuevamente.",
		NewTrans(En, "❌ Invalid response from the server. Please try again."),
		NewTrans(Fr, "❌ Réponse invalide du serveur. Veuillez réessayer."),
		NewTrans(Zh, "❌ 服务器响应无效。请重试。"),
	),
	KindContentFiltered: NewSet(
		"🚫 Contenido filtrado por políticas de seguridad.",
		NewTrans(En, "🚫 Content filtered by safety policies."),
		NewTrans(Fr, "🚫 Contenu filtré par les règles de sécurité."),
		NewTrans(Zh, "🚫 内容已被安全策略过滤。"),
	),
	KindRateLimited: NewSet(
		"⏰ Demasiadas consultas. Espera un momento antes de continuar.",
		NewTrans(En, "⏰ Too many requests. Wait a moment before continuing."),
		NewTrans(Fr, "⏰ Trop de requêtes. Patientez un instant avant de continuer."),
		NewTrans(Zh, "⏰ 请求过多。请稍等片刻再继续。"),
	),
	KindImageProcessingFailure: NewSet(
		"🖼️ Error al procesar la imagen. Intenta con otra imagen.",
		NewTrans(En, "🖼️ Could not process the image. Try another image."),
		NewTrans(Fr, "🖼️ Erreur lors du traitement de l'image. Essayez une autre image."),
		NewTrans(Zh, "🖼️ 图片处理失败。请换一张图片。"),
	),
	KindInvalidInput: NewSet(
		"✏️ Escribe un mensaje de hasta %d caracteres.",
		NewTrans(En, "✏️ Write a message of up to %d characters."),
		NewTrans(Fr, "✏️ Écrivez un message de %d caractères maximum."),
		NewTrans(Zh, "✏️ 请输入不超过 %d 个字符的消息。"),
	),
	KindGeneral: NewSet(
		"⚠️ %s",
		NewTrans(En, "⚠️ %s"),
		NewTrans(Fr, "⚠️ %s"),
		NewTrans(Zh, "⚠️ %s"),
	),
}

var recoveryTexts = map[string]TextSet{
	KindMissingCredential: NewSet(
		"Configura la variable OPENAI_API_KEY con una clave válida.",
		NewTrans(En, "Set OPENAI_API_KEY to a valid key."),
		NewTrans(Fr, "Définissez OPENAI_API_KEY avec une clé valide."),
		NewTrans(Zh, "请将 OPENAI_API_KEY 设置为有效的密钥。"),
	),
	KindNetworkFailure: NewSet(
		"Revisa tu conexión e inténtalo de nuevo.",
		NewTrans(En, "Check your connection and try again."),
		NewTrans(Fr, "Vérifiez votre connexion et réessayez."),
		NewTrans(Zh, "请检查网络连接后重试。"),
	),
	KindContentFiltered: NewSet(
		"Reformula tu mensaje evitando contenido inapropiado.",
		NewTrans(En, "Rephrase your message without inappropriate content."),
		NewTrans(Fr, "Reformulez votre message sans contenu inapproprié."),
		NewTrans(Zh, "请修改你的消息，避免不当内容。"),
	),
	KindRateLimited: NewSet(
		"Espera unos segundos antes de enviar otro mensaje.",
		NewTrans(En, "Wait a few seconds before sending another message."),
		NewTrans(Fr, "Attendez quelques secondes avant d'envoyer un autre message."),
		NewTrans(Zh, "请等待几秒钟再发送下一条消息。"),
	),
	KindImageProcessingFailure: NewSet(
		"Usa una imagen JPEG, PNG, GIF o WebP válida.",
		NewTrans(En, "Use a valid JPEG, PNG, GIF or WebP image."),
		NewTrans(Fr, "Utilisez une image JPEG, PNG, GIF ou WebP valide."),
		NewTrans(Zh, "请使用有效的 JPEG、PNG、GIF 或 WebP 图片。"),
	),
}

// ErrorText returns the user-facing text for an error kind. args fill the
// kinds that take parameters: the message for general errors and the
// length limit for invalid input.
func ErrorText(language Language, kind string, args ...any) string {
	set, ok := errorTexts[kind]
	if !ok {
		set = errorTexts[KindGeneral]
	}
	if kind == KindGeneral || kind == KindInvalidInput || !ok {
		return set.Format(language, args...)
	}
	return set.Text(language)
}

// Recovery returns a suggestion for the error kind, or "" when none applies.
func Recovery(language Language, kind string) string {
	if set, ok := recoveryTexts[kind]; ok {
		return set.Text(language)
	}
	return ""
}
