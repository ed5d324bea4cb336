package reservation

import "github.com/atsuki-sakai/salon-system-sub000/pkg/dbmetrics"

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
