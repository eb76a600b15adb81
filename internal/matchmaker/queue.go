package matchmaker

// QueueContext — зал ожидания: набор игроков для проверки дублей,
// упорядоченная очередь команд и кольцевая история сыгранных пар.
//
// Инвариант: для каждого игрока p из players ровно одна команда в queue
// содержит p; |players| == 2*|queue|.
type QueueContext struct {
	round      Round
	players    map[int64]Team
	queue      []Team
	history    []Match
	maxHistory int
}

// NewQueueContext создаёт пустой контекст очереди для заданного раунда.
func NewQueueContext(round Round, maxHistory int) *QueueContext {
	return &QueueContext{
		round:      round,
		players:    make(map[int64]Team),
		queue:      nil,
		history:    nil,
		maxHistory: maxHistory,
	}
}

// Len возвращает число команд в очереди.
func (q *QueueContext) Len() int { return len(q.queue) }

// IsEmpty — true, если очередь пуста.
func (q *QueueContext) IsEmpty() bool { return len(q.queue) == 0 }

// Round возвращает дескриптор текущего раунда очереди.
func (q *QueueContext) Round() Round { return q.round }

// AdvanceRound инкрементирует round_id очереди (вызывается триггером).
func (q *QueueContext) AdvanceRound() { q.round.ID++ }

// Queue добавляет команду в очередь. Отклоняет команду с отсутствующими
// полями (MissingFields) или если один из игроков уже состоит в очереди
// (AlreadyQueued).
func (q *QueueContext) Queue(team Team) error {
	if err := team.Validate(); err != nil {
		return err
	}
	if existing, ok := q.players[team.PlayerOne.DiscordID]; ok {
		return newAlreadyQueued(team.PlayerOne.DiscordID, existing)
	}
	if existing, ok := q.players[team.PlayerTwo.DiscordID]; ok {
		return newAlreadyQueued(team.PlayerTwo.DiscordID, existing)
	}
	q.players[team.PlayerOne.DiscordID] = team
	q.players[team.PlayerTwo.DiscordID] = team
	q.queue = append(q.queue, team)
	return nil
}

// Dequeue удаляет команду из очереди.
func (q *QueueContext) Dequeue(team Team) error {
	if err := team.Validate(); err != nil {
		return err
	}
	idx := -1
	for i, t := range q.queue {
		if t.ID == team.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotQueued
	}
	delete(q.players, team.PlayerOne.DiscordID)
	delete(q.players, team.PlayerTwo.DiscordID)
	q.queue = append(q.queue[:idx], q.queue[idx+1:]...)
	return nil
}

// PushHistory добавляет матч в кольцевую историю; старейший элемент
// отбрасывается при превышении max_history. No-op при max_history == 0.
func (q *QueueContext) PushHistory(m Match) {
	if q.maxHistory == 0 {
		return
	}
	q.history = append(q.history, m)
	if len(q.history) > q.maxHistory {
		q.history = q.history[len(q.history)-q.maxHistory:]
	}
}

// History возвращает снимок текущей истории (для принципал-агентов).
func (q *QueueContext) History() []Match {
	out := make([]Match, len(q.history))
	copy(out, q.history)
	return out
}

// Teams возвращает снимок команд в очереди, в порядке постановки.
func (q *QueueContext) Teams() []Team {
	out := make([]Team, len(q.queue))
	copy(out, q.queue)
	return out
}

// Clear очищает очередь и набор игроков, не трогая историю.
func (q *QueueContext) Clear() {
	q.players = make(map[int64]Team)
	q.queue = nil
}

// ClearHistory очищает кольцо истории.
func (q *QueueContext) ClearHistory() {
	q.history = nil
}

// Lookup ищет команду по полиморфному ключу: по игроку (членство) или по
// team_id. Ключ по матчу ничего не находит: очередь не хранит матчи.
func (q *QueueContext) Lookup(key LookupKey) (Team, bool) {
	switch key.Kind {
	case LookupKeyPlayer:
		t, ok := q.players[key.Player]
		return t, ok
	case LookupKeyTeam:
		for _, t := range q.queue {
			if t.ID == key.Team {
				return t, true
			}
		}
	case LookupKeyMatch:
		// очередь не хранит матчи; поиск по матчу не применим здесь.
	}
	return Team{}, false
}
