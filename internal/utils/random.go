package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// UsernameFromName 汉字转为全拼，其余字符只保留字母和数字，统一小写
func UsernameFromName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.Is(unicode.Han, r):
			for _, py := range pinyin.LazyConvert(string(r), nil) {
				sb.WriteString(py)
			}
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 拼音后面加上随机数字，降低重名概率
func GenerateUsernameFromChineseName(chineseName string) string {
	username := UsernameFromName(chineseName)

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

func GenerateRandomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}

func int32Ptr(v int32) *int32 {
	return &v
}

// GenerateRandomSettings 生成一份合法的排班设置，约一半的员工带有类别上下限
func GenerateRandomSettings(cycleLength int32) *domain.EmployeeSettings {
	maxShifts := rand.Int31n(cycleLength) + 1
	settings := &domain.EmployeeSettings{
		MinShiftsPerWeek: rand.Int31n(maxShifts + 1),
		MaxShiftsPerWeek: maxShifts,
		Categories:       map[domain.ShiftCategory]domain.CategoryBounds{},
	}

	if rand.Intn(2) == 0 {
		return settings
	}
	for _, c := range domain.BoundedCategories {
		if rand.Intn(2) == 0 {
			continue
		}
		upper := rand.Int31n(maxShifts + 1)
		settings.Categories[c] = domain.CategoryBounds{
			Min: int32Ptr(rand.Int31n(upper + 1)),
			Max: int32Ptr(upper),
		}
	}
	return settings
}

func GenerateRandomEmployee(locationID int64, cycleLength int32) *domain.Employee {
	return &domain.Employee{
		LocationID:      locationID,
		Name:            GenerateRandomChineseName(),
		Color:           GenerateRandomColor(),
		IsActive:        rand.Intn(10) != 0,
		WorkedLastNoon:  rand.Intn(4) == 0,
		WorkedLastNight: rand.Intn(4) == 0,
		Settings:        GenerateRandomSettings(cycleLength),
	}
}

var constraintTypes = []domain.ConstraintType{
	domain.ConstraintCannotWork,
	domain.ConstraintMustWork,
	domain.ConstraintPreferNot,
	domain.ConstraintPreferTo,
}

// GenerateRandomConstraint 在周期内随机挑选一个格子生成约束
func GenerateRandomConstraint(employee *domain.Employee, shifts []*domain.ShiftDefinition, cycleStart time.Time, cycleLength int32) *domain.WeeklyConstraint {
	return &domain.WeeklyConstraint{
		EmployeeID: employee.ID,
		ShiftID:    shifts[rand.Intn(len(shifts))].ID,
		Date:       cycleStart.AddDate(0, 0, rand.Intn(int(cycleLength))),
		Type:       constraintTypes[rand.Intn(len(constraintTypes))],
	}
}
