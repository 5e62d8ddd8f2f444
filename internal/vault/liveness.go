package vault

import "time"

// Health — классификация состояния vault по оставшемуся времени.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthHungry   Health = "hungry"   // < 50% окна
	HealthCritical Health = "critical" // < 25% окна
	HealthGhost    Health = "ghost"    // vault уже released
)

// Все функции ниже — чистые вычисления над (lastCheckIn, interval, now)
// в беззнаковых секундах. now — wall-clock вызывающего, перекос часов
// не компенсируется. Безопасно звать на каждый рендер/поллинг.

// TimeRemaining возвращает секунды до истечения окна, не меньше нуля.
func TimeRemaining(lastCheckIn, interval, now uint64) uint64 {
	expiry := lastCheckIn + interval
	if now >= expiry {
		return 0
	}
	return expiry - now
}

// IsExpired сообщает, истекло ли окно liveness.
// Граница не включается: ровно в момент expiry vault ещё жив.
func IsExpired(lastCheckIn, interval, now uint64) bool {
	return now > lastCheckIn+interval
}

// ExpiryTime — unix-время, после которого vault становится claimable.
func ExpiryTime(lastCheckIn, interval uint64) uint64 {
	return lastCheckIn + interval
}

// NextCheckInDue — дедлайн следующего чек-ина в виде time.Time.
func NextCheckInDue(lastCheckIn, interval uint64) time.Time {
	return time.Unix(int64(lastCheckIn+interval), 0).UTC()
}

// HealthPercent — линейная доля оставшегося окна, [0, 100].
// Нулевой интервал считается полностью истёкшим.
func HealthPercent(lastCheckIn, interval, now uint64) float64 {
	if interval == 0 {
		return 0
	}
	p := float64(TimeRemaining(lastCheckIn, interval, now)) / float64(interval) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// Classify переводит процент здоровья в Health.
// Границы строгие: ровно 25 — ещё не critical, ровно 50 — ещё не hungry.
func Classify(healthPercent float64, released bool) Health {
	switch {
	case released:
		return HealthGhost
	case healthPercent < 25:
		return HealthCritical
	case healthPercent < 50:
		return HealthHungry
	default:
		return HealthHealthy
	}
}
