package signature

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/nyan233/littledelegate/core/common/errorhandler"
	perror "github.com/nyan233/littledelegate/core/protocol/error"
)

var efaceType = reflect.TypeOf((*interface{})(nil)).Elem()

// Parse 解析签名的规范文本并重建一个可以参与匹配的签名
// 文本中出现的每一个命名类型都必须能在名字表中解析到,
// 否则返回ErrParseSignature, 解析成功的签名总是携带重建的
// 运行时类型, 所以它和反射路径构造的签名可以做结构化比较
func Parse(text string) (*Signature, perror.LErrorDesc) {
	trimmed := strings.TrimSpace(text)
	ft, names, err := parseFuncType(trimmed)
	if err != nil {
		return nil, err
	}
	sig, lErr := FromType(ft)
	if lErr != nil {
		return nil, lErr
	}
	if !hasAnyName(names) {
		return sig, nil
	}
	// 带参数名的解析结果不能回写缓存中的共享签名
	named := *sig
	named.params = make([]Param, len(sig.params))
	copy(named.params, sig.params)
	for i := range named.params {
		if i < len(names) {
			named.params[i].Name = names[i]
		}
	}
	return &named, nil
}

func hasAnyName(names []string) bool {
	for _, v := range names {
		if v != "" {
			return true
		}
	}
	return false
}

func parseError(text, reason string) perror.LErrorDesc {
	return perror.LWarpStdError(errorhandler.ErrParseSignature, text, reason)
}

func parseFuncType(text string) (reflect.Type, []string, perror.LErrorDesc) {
	if !strings.HasPrefix(text, "func") {
		return nil, nil, parseError(text, "signature must start with func")
	}
	rest := strings.TrimSpace(text[len("func"):])
	if len(rest) == 0 || rest[0] != '(' {
		return nil, nil, parseError(text, "missing parameter list")
	}
	end := matchParen(rest)
	if end < 0 {
		return nil, nil, parseError(text, "unbalanced parameter list")
	}
	paramPart := rest[1:end]
	resultPart := strings.TrimSpace(rest[end+1:])

	var (
		ins      []reflect.Type
		names    []string
		variadic bool
	)
	for i, frag := range splitTopLevel(paramPart) {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			return nil, nil, parseError(text, "empty parameter at index "+strconv.Itoa(i))
		}
		if variadic {
			return nil, nil, parseError(text, "variadic parameter is not last")
		}
		name, typText := splitParamName(frag)
		if strings.HasPrefix(typText, "...") {
			variadic = true
			elem, err := resolveType(strings.TrimSpace(typText[3:]))
			if err != nil {
				return nil, nil, err
			}
			ins = append(ins, reflect.SliceOf(elem))
			names = append(names, name)
			continue
		}
		typ, err := resolveType(typText)
		if err != nil {
			return nil, nil, err
		}
		ins = append(ins, typ)
		names = append(names, name)
	}

	outs, err := parseResults(resultPart)
	if err != nil {
		return nil, nil, err
	}
	return reflect.FuncOf(ins, outs, variadic), names, nil
}

func parseResults(text string) ([]reflect.Type, perror.LErrorDesc) {
	if text == "" {
		return nil, nil
	}
	if text[0] == '(' {
		end := matchParen(text)
		if end < 0 || strings.TrimSpace(text[end+1:]) != "" {
			return nil, parseError(text, "unbalanced result list")
		}
		var outs []reflect.Type
		for _, frag := range splitTopLevel(text[1:end]) {
			typ, err := resolveType(strings.TrimSpace(frag))
			if err != nil {
				return nil, err
			}
			outs = append(outs, typ)
		}
		return outs, nil
	}
	typ, err := resolveType(text)
	if err != nil {
		return nil, err
	}
	return []reflect.Type{typ}, nil
}

// resolveType 解析单个类型的拼写, 复合类型递归下降
func resolveType(text string) (reflect.Type, perror.LErrorDesc) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, parseError(text, "empty type")
	case text == "interface{}" || text == "interface {}" || text == "any":
		return efaceType, nil
	case strings.HasPrefix(text, "*"):
		elem, err := resolveType(text[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PtrTo(elem), nil
	case strings.HasPrefix(text, "[]"):
		elem, err := resolveType(text[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(text, "["):
		rb := strings.IndexByte(text, ']')
		if rb < 0 {
			return nil, parseError(text, "unbalanced array length")
		}
		n, convErr := strconv.Atoi(text[1:rb])
		if convErr != nil || n < 0 {
			return nil, parseError(text, "bad array length")
		}
		elem, err := resolveType(text[rb+1:])
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, elem), nil
	case strings.HasPrefix(text, "map["):
		keyEnd := matchBracket(text[3:])
		if keyEnd < 0 {
			return nil, parseError(text, "unbalanced map key")
		}
		key, err := resolveType(text[4 : 3+keyEnd])
		if err != nil {
			return nil, err
		}
		val, err := resolveType(text[3+keyEnd+1:])
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, parseError(text, "map key is not comparable")
		}
		return reflect.MapOf(key, val), nil
	case strings.HasPrefix(text, "<-chan "):
		elem, err := resolveType(text[len("<-chan "):])
		if err != nil {
			return nil, err
		}
		return reflect.ChanOf(reflect.RecvDir, elem), nil
	case strings.HasPrefix(text, "chan<- "):
		elem, err := resolveType(text[len("chan<- "):])
		if err != nil {
			return nil, err
		}
		return reflect.ChanOf(reflect.SendDir, elem), nil
	case strings.HasPrefix(text, "chan "):
		elem, err := resolveType(text[len("chan "):])
		if err != nil {
			return nil, err
		}
		return reflect.ChanOf(reflect.BothDir, elem), nil
	case strings.HasPrefix(text, "func"):
		ft, _, err := parseFuncType(text)
		return ft, err
	default:
		typ, ok := lookupTypeName(text)
		if !ok {
			return nil, parseError(text, "unresolvable type name, "+
				"register it with signature.RegisterType first")
		}
		return typ, nil
	}
}

// splitParamName 识别可选的参数名前缀, 形如"x int"
// 参数名必须是一个普通标识符, 类型关键字不会被误判
func splitParamName(frag string) (name, typText string) {
	sp := strings.IndexByte(frag, ' ')
	if sp < 0 {
		return "", frag
	}
	head := frag[:sp]
	if !isIdent(head) {
		return "", frag
	}
	switch head {
	case "chan", "func", "map", "interface", "struct":
		return "", frag
	}
	// 名字本身可以解析成类型时不把它当作参数名
	if _, ok := lookupTypeName(head); ok {
		return "", frag
	}
	return head, strings.TrimSpace(frag[sp+1:])
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return true
}

// matchParen text[0]必须是'(', 返回与之配对的')'下标
func matchParen(text string) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchBracket text[0]必须是'[', 返回与之配对的']'下标
func matchBracket(text string) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel 按深度为0的逗号切分片段, 嵌套的括号/方括号/花括号
// 里面的逗号不会造成切分
func splitTopLevel(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var (
		frags []string
		depth int
		start int
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				frags = append(frags, text[start:i])
				start = i + 1
			}
		}
	}
	frags = append(frags, text[start:])
	return frags
}
