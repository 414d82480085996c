package scaffold

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidName 表示名称不满足类型要求的命名规则。
	ErrInvalidName = errors.New("invalid scaffold name")
	// ErrInvalidNamespace 表示命名空间为空或不是合法标识符。
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrUnknownKind 表示脚手架类型未注册。
	ErrUnknownKind = errors.New("unknown scaffold kind")
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	slugPattern       = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

// 生成文件是 Python 源码，关键字不能作为函数名或命名空间段。
var pythonKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// ValidateIdentifier 检查 ASCII Python 标识符规则并排除关键字。
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%q 不是合法标识符", name)
	}
	if _, reserved := pythonKeywords[name]; reserved {
		return fmt.Errorf("%q 是保留关键字", name)
	}
	return nil
}

// ValidateNamespace 允许点分命名空间（如 core.io），每一段都必须是合法标识符。
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("%w: 不能为空", ErrInvalidNamespace)
	}
	for _, segment := range strings.Split(namespace, ".") {
		if err := ValidateIdentifier(segment); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidNamespace, err)
		}
	}
	return nil
}

// ValidateName 按类型的 NameRule 校验名称。
func ValidateName(rule NameRule, name string) error {
	switch rule {
	case NameRuleSlug:
		if !slugPattern.MatchString(name) {
			return fmt.Errorf("%w: %q 仅允许字母、数字、_ . -", ErrInvalidName, name)
		}
		return nil
	case NameRuleIdentifier, "":
		if err := ValidateIdentifier(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidName, err)
		}
		return nil
	default:
		return fmt.Errorf("不支持的命名规则: %s", rule)
	}
}
