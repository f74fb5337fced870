package local

var Greeting = NewSet(
	"👋 ¡Hola! Soy tu asistente legal. Envíame cualquier texto legal y te lo explicaré con palabras sencillas.",
	NewTrans(En, "👋 Hello! I'm your legal assistant. Send me any legal text and I'll explain it in simple terms."),
	NewTrans(Fr, "👋 Bonjour ! Je suis votre assistant juridique. Envoyez-moi un texte juridique et je vous l'expliquerai simplement."),
	NewTrans(Zh, "👋 你好！我是你的法律助手。把任何法律文本发给我，我会用简单的话为你解释。"),
)

var Help = NewSet(
	"Escribe tu consulta y pulsa Enter. Comandos: /image <ruta>, /retry, /new, /usage, /quit.",
	NewTrans(En, "Type your question and press Enter. Commands: /image <path>, /retry, /new, /usage, /quit."),
	NewTrans(Fr, "Écrivez votre question et appuyez sur Entrée. Commandes : /image <chemin>, /retry, /new, /usage, /quit."),
	NewTrans(Zh, "输入你的问题并按回车。命令：/image <路径>、/retry、/new、/usage、/quit。"),
)

var Thinking = NewSet(
	"Pensando…",
	NewTrans(En, "Thinking…"),
	NewTrans(Fr, "Réflexion…"),
	NewTrans(Zh, "思考中…"),
)

var ImageRead = NewSet(
	"🖼️ No se pudo leer el archivo %q.",
	NewTrans(En, "🖼️ Could not read file %q."),
	NewTrans(Fr, "🖼️ Impossible de lire le fichier %q."),
	NewTrans(Zh, "🖼️ 无法读取文件 %q。"),
)

var ImageSent = NewSet(
	"🖼️ Imagen enviada: %s",
	NewTrans(En, "🖼️ Image sent: %s"),
	NewTrans(Fr, "🖼️ Image envoyée : %s"),
	NewTrans(Zh, "🖼️ 已发送图片：%s"),
)

var Usage = NewSet(
	"📊 %d/%d mensajes este minuto, %d/%d hoy.",
	NewTrans(En, "📊 %d/%d messages this minute, %d/%d today."),
	NewTrans(Fr, "📊 %d/%d messages cette minute, %d/%d aujourd'hui."),
	NewTrans(Zh, "📊 本分钟 %d/%d 条消息，今天 %d/%d 条。"),
)

var NothingToResend = NewSet(
	"No hay ningún mensaje pendiente de reenviar.",
	NewTrans(En, "There is no message waiting to be resent."),
	NewTrans(Fr, "Aucun message en attente de renvoi."),
	NewTrans(Zh, "没有等待重新发送的消息。"),
)
