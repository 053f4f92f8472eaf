package seed

import (
	"bytes"
	"database/sql"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
	"github.com/team3-dev/auto-shift/backend/internal/scheduler"
	"github.com/team3-dev/auto-shift/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

//go:embed data/roster.csv
var rosterCSV []byte

const (
	OrganizationName = "Team3"
	ClientName       = "SolarEdge"
	LocationName     = "Herzliya Campus"
)

// 演示地点的三个班次，按 Position 排列
var demoShifts = []struct {
	name     string
	category domain.ShiftCategory
}{
	{"Morning", domain.CategoryMorning},
	{"Evening", domain.CategoryEvening},
	{"Night", domain.CategoryNight},
}

type Store interface {
	GetOrganizationByName(name string) (*domain.Organization, error)
	CreateOrganization(org *domain.Organization) error
	CreateClient(client *domain.Client) error
	CreateLocation(location *domain.Location) error
	CreateShiftDefinition(shift *domain.ShiftDefinition) error
	UpsertWeights(w *domain.Weights) error
	CreateEmployee(e *domain.Employee) error
	CreateWeeklyConstraint(c *domain.WeeklyConstraint) error
	CreateUser(user *domain.User) error
}

// Cell 周期内的一个格子，Day 相对于周期开始，Shift 为班次的 Position
type Cell struct {
	Day   int
	Shift int
}

type RosterEntry struct {
	Employee    *domain.Employee
	Unavailable []Cell
	Forced      []Cell
}

var rosterHeaders = []string{
	"name", "color", "max_shifts",
	"min_mornings", "max_mornings", "min_evenings", "max_evenings", "min_nights", "max_nights",
	"history_streak", "worked_last_friday_night", "worked_last_noon", "worked_last_night",
	"unavailable", "forced",
}

// ParseRoster 读取员工花名册，每行一个员工
func ParseRoster(r io.Reader) ([]RosterEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(rosterHeaders)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i, h := range rosterHeaders {
		if strings.TrimSpace(headers[i]) != h {
			return nil, fmt.Errorf("第 %d 列应为 %s，实际为 %s", i+1, h, headers[i])
		}
	}

	entries := make([]RosterEntry, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		entry, err := parseRosterRecord(record)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRosterRecord(record []string) (RosterEntry, error) {
	ints := make([]int32, 7)
	for i := range ints {
		n, err := strconv.ParseInt(strings.TrimSpace(record[i+2]), 10, 32)
		if err != nil {
			return RosterEntry{}, fmt.Errorf("%s 不是整数", rosterHeaders[i+2])
		}
		ints[i] = int32(n)
	}
	bools := make([]bool, 3)
	for i := range bools {
		b, err := strconv.ParseBool(strings.TrimSpace(record[i+10]))
		if err != nil {
			return RosterEntry{}, fmt.Errorf("%s 不是布尔值", rosterHeaders[i+10])
		}
		bools[i] = b
	}

	streak, err := strconv.ParseInt(strings.TrimSpace(record[9]), 10, 32)
	if err != nil {
		return RosterEntry{}, errors.New("history_streak 不是整数")
	}

	unavailable, err := parseCells(record[13])
	if err != nil {
		return RosterEntry{}, err
	}
	forced, err := parseCells(record[14])
	if err != nil {
		return RosterEntry{}, err
	}

	bounds := func(lo, hi int32) domain.CategoryBounds {
		return domain.CategoryBounds{Min: &lo, Max: &hi}
	}

	return RosterEntry{
		Employee: &domain.Employee{
			Name:                  strings.TrimSpace(record[0]),
			Color:                 strings.TrimSpace(record[1]),
			IsActive:              true,
			HistoryStreak:         int32(streak),
			WorkedLastFridayNight: bools[0],
			WorkedLastNoon:        bools[1],
			WorkedLastNight:       bools[2],
			Settings: &domain.EmployeeSettings{
				MinShiftsPerWeek: 0,
				MaxShiftsPerWeek: ints[0],
				Categories: map[domain.ShiftCategory]domain.CategoryBounds{
					domain.CategoryMorning: bounds(ints[1], ints[2]),
					domain.CategoryEvening: bounds(ints[3], ints[4]),
					domain.CategoryNight:   bounds(ints[5], ints[6]),
				},
			},
		},
		Unavailable: unavailable,
		Forced:      forced,
	}, nil
}

// parseCells 解析 "day:shift;day:shift" 格式
func parseCells(s string) ([]Cell, error) {
	cells := make([]Cell, 0)
	s = strings.TrimSpace(s)
	if s == "" {
		return cells, nil
	}
	for _, part := range strings.Split(s, ";") {
		day, shift, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("无效的格子 %q", part)
		}
		d, err := strconv.Atoi(strings.TrimSpace(day))
		if err != nil {
			return nil, fmt.Errorf("无效的格子 %q", part)
		}
		sh, err := strconv.Atoi(strings.TrimSpace(shift))
		if err != nil {
			return nil, fmt.Errorf("无效的格子 %q", part)
		}
		cells = append(cells, Cell{Day: d, Shift: sh})
	}
	return cells, nil
}

// SeedDemoData 创建演示用的组织、地点、班次和员工，并为下一个周期写入约束
func SeedDemoData(store Store, userPassword string, now time.Time) error {
	if _, err := store.GetOrganizationByName(OrganizationName); err == nil {
		slog.Info("演示数据已存在，跳过")
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	entries, err := ParseRoster(bytes.NewReader(rosterCSV))
	if err != nil {
		return err
	}

	org := &domain.Organization{Name: OrganizationName}
	if err := store.CreateOrganization(org); err != nil {
		return err
	}
	client := &domain.Client{OrganizationID: org.ID, Name: ClientName}
	if err := store.CreateClient(client); err != nil {
		return err
	}
	location := &domain.Location{
		ClientID:          client.ID,
		Name:              LocationName,
		CycleLength:       domain.DefaultCycleLength,
		ShiftsPerDay:      int32(len(demoShifts)),
		CycleStartWeekday: time.Sunday,
	}
	if err := store.CreateLocation(location); err != nil {
		return err
	}
	slog.Info("创建地点成功", "location", location.ID, "name", location.Name)

	shifts := make([]*domain.ShiftDefinition, len(demoShifts))
	for i, s := range demoShifts {
		shift := &domain.ShiftDefinition{
			LocationID:        location.ID,
			Name:              s.name,
			Category:          s.category,
			Position:          int32(i),
			DefaultStaffCount: domain.DefaultStaffCount,
		}
		// 周五早班只需要一个人
		if s.category == domain.CategoryMorning {
			shift.Demands = []domain.ShiftDemand{{DayOfWeek: int32(time.Friday), StaffNeeded: 1}}
		}
		if err := store.CreateShiftDefinition(shift); err != nil {
			return err
		}
		shifts[i] = shift
	}

	if err := store.UpsertWeights(domain.DefaultWeights(location.ID)); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	cycleStart := scheduler.NextCycleStart(now, location.CycleStartWeekday)
	constraints := 0
	for _, entry := range entries {
		employee := entry.Employee
		employee.LocationID = location.ID
		if err := store.CreateEmployee(employee); err != nil {
			return fmt.Errorf("无法创建员工 %s: %w", employee.Name, err)
		}

		pins := []struct {
			cells []Cell
			typ   domain.ConstraintType
		}{
			{entry.Unavailable, domain.ConstraintCannotWork},
			{entry.Forced, domain.ConstraintMustWork},
		}
		for _, p := range pins {
			for _, cell := range p.cells {
				if cell.Shift < 0 || cell.Shift >= len(shifts) || cell.Day < 0 || cell.Day >= int(location.CycleLength) {
					slog.Warn("忽略越界的格子", "employee", employee.Name, "day", cell.Day, "shift", cell.Shift)
					continue
				}
				c := &domain.WeeklyConstraint{
					EmployeeID: employee.ID,
					ShiftID:    shifts[cell.Shift].ID,
					Date:       cycleStart.AddDate(0, 0, cell.Day),
					Type:       p.typ,
				}
				if err := store.CreateWeeklyConstraint(c); err != nil {
					return err
				}
				constraints++
			}
		}

		employeeID := employee.ID
		user := &domain.User{
			Username:     utils.UsernameFromName(employee.Name),
			PasswordHash: string(passwordHash),
			FullName:     employee.Name,
			Role:         domain.RoleEmployee,
			EmployeeID:   &employeeID,
		}
		if err := store.CreateUser(user); err != nil {
			return fmt.Errorf("无法创建用户 %s: %w", user.Username, err)
		}
	}

	slog.Info("演示数据插入成功",
		"employees", len(entries),
		"constraints", constraints,
		"cycleStart", cycleStart.Format(time.DateOnly),
	)
	return nil
}
