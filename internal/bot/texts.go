package bot

// User-facing message texts.
const (
	msgAskCity        = "Введите город:"
	msgCityChosen     = "Город выбран: %s\nВведите тему:"
	msgCityPick       = "Выберите город из списка или введите заново:"
	msgCityNotFound   = "Город не найден, попробуйте снова."
	msgAskTopic       = "Введите тему:"
	msgAskDescription = "Опишите заявку:"
	msgTicketAccepted = "Заявка №%d принята. Статус: %s."

	msgNoTickets        = "Заявок пока нет."
	msgTicketListHeader = "📋 Список заявок:\n\n"
	msgTicketListEntry  = "#%d [%s]\nДата: %s\nГород: %s\nТема: %s\nОписание: %s\n\n"
	msgTicketListFooter = "Чтобы ответить, используйте:\n/reply <id>"
	msgReplyUsage       = "Используйте команду так: /reply <номер заявки>"
	msgTicketNotFound   = "Заявка с таким номером не найдена."
	msgAskReplyText     = "Введите ответ пользователю по заявке #%d:"
	msgRequesterMissing = "Пользователь для этой заявки не найден."
	msgReplySent        = "Ответ отправлен пользователю. Через %d минут он получит вопрос о решении заявки."
	msgAdminReply       = "Ответ администратора по заявке #%d:\n\n%s"

	msgResolvedThanks  = "Спасибо, заявка #%d отмечена как решённая."
	msgAskProblem      = "Что не так? Опишите проблему:"
	msgReasonForwarded = "Спасибо, передал администратору. Он свяжется с вами, и я снова спрошу через %d минут."

	msgAskStartDate  = "Введите начальную дату в формате ДД.ММ.ГГГГ или '-' для пропуска:"
	msgAskEndDate    = "Введите конечную дату в формате ДД.ММ.ГГГГ или '-' для пропуска:"
	msgAskStatsCity  = "Введите город или '-' для пропуска:"
	msgAskStatsTopic = "Введите тему или '-' для пропуска:"
	msgBadStartDate  = "Ошибка в формате начальной даты. Используйте ДД.ММ.ГГГГ"
	msgBadEndDate    = "Ошибка в формате конечной даты. Используйте ДД.ММ.ГГГГ"

	msgStatsHeader  = "📊 Статистика заявок:\n\nОбщее количество: %d\n✅ Решено: %d\n❌ Не решено: %d\n"
	msgStatsByCity  = "\nПо городам:\n"
	msgStatsByTopic = "\nПо темам:\n"
)
