package manchester

// ClinicalFlow is a Manchester presenting-complaint flowchart. Entries are
// static and matched against free-text complaints by keyword containment.
type ClinicalFlow struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords"`
	DefaultPriority Priority `json:"default_priority"`
	MinPriority     Priority `json:"min_priority"`
	MaxPriority     Priority `json:"max_priority"`
	Specialty       string   `json:"specialty,omitempty"`
}

// catalog is declared in the order ties are broken by SuggestFlows.
var catalog = []ClinicalFlow{
	{
		ID: "chest_pain", Name: "Dor torácica",
		Description:     "Dor ou desconforto torácico, suspeita de síndrome coronariana",
		Keywords:        []string{"dor no peito", "dor torácica", "dor toracica", "aperto no peito", "peito", "angina", "infarto", "precordial"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "shortness_of_breath_adult", Name: "Dispneia em adulto",
		Description:     "Falta de ar ou desconforto respiratório em adulto",
		Keywords:        []string{"falta de ar", "dispneia", "cansaço para respirar", "sem ar", "sufocamento", "chiado"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "shortness_of_breath_child", Name: "Dispneia em criança",
		Description:     "Desconforto respiratório em criança",
		Keywords:        []string{"criança com falta de ar", "bebê cansado", "respiração rápida", "tiragem", "gemência"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "asthma", Name: "Asma",
		Description:     "Crise asmática ou história de asma",
		Keywords:        []string{"asma", "bronquite", "bombinha", "broncoespasmo"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "collapsed_adult", Name: "Desmaio no adulto",
		Description:     "Síncope, perda de consciência ou colapso",
		Keywords:        []string{"desmaio", "desmaiou", "síncope", "sincope", "perdeu a consciência", "apagou"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "seizures", Name: "Convulsões",
		Description:     "Crise convulsiva atual ou recente",
		Keywords:        []string{"convulsão", "convulsao", "convulsionou", "epilepsia", "ataque epiléptico", "tremores"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityYellow, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "headache", Name: "Cefaleia",
		Description:     "Dor de cabeça de qualquer intensidade",
		Keywords:        []string{"dor de cabeça", "cefaleia", "enxaqueca", "cabeça latejando"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "abdominal_pain_adult", Name: "Dor abdominal em adulto",
		Description:     "Dor abdominal em paciente adulto",
		Keywords:        []string{"dor abdominal", "dor na barriga", "dor de barriga", "cólica", "colica", "dor no estômago"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "abdominal_pain_child", Name: "Dor abdominal em criança",
		Description:     "Dor abdominal em criança",
		Keywords:        []string{"criança com dor na barriga", "barriga inchada", "criança com cólica"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "diarrhoea_vomiting", Name: "Diarreia e vômitos",
		Description:     "Diarreia, vômitos ou desidratação",
		Keywords:        []string{"diarreia", "vômito", "vomito", "vomitando", "enjoo", "náusea", "nausea", "desidratação"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "gi_bleeding", Name: "Hemorragia digestiva",
		Description:     "Sangramento digestivo alto ou baixo",
		Keywords:        []string{"vômito com sangue", "hematêmese", "fezes com sangue", "melena", "fezes pretas", "sangue nas fezes"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityYellow, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "palpitations", Name: "Palpitações",
		Description:     "Sensação de batimentos cardíacos acelerados ou irregulares",
		Keywords:        []string{"palpitação", "palpitacao", "coração acelerado", "taquicardia", "arritmia", "batedeira"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "diabetes", Name: "Diabetes",
		Description:     "Descompensação glicêmica em paciente diabético",
		Keywords:        []string{"diabetes", "diabético", "glicemia", "hipoglicemia", "hiperglicemia", "açúcar alto", "insulina"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "unwell_adult", Name: "Mal-estar em adulto",
		Description:     "Queixa inespecífica de mal-estar em adulto",
		Keywords:        []string{"mal-estar", "mal estar", "fraqueza", "indisposição", "febre", "tontura"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "unwell_child", Name: "Mal-estar em criança",
		Description:     "Criança prostrada ou com febre",
		Keywords:        []string{"criança com febre", "criança prostrada", "bebê com febre", "criança molinha"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "crying_baby", Name: "Bebê chorando",
		Description:     "Lactente com choro persistente",
		Keywords:        []string{"bebê chorando", "bebe chorando", "choro inconsolável", "choro persistente"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "irritable_child", Name: "Criança irritadiça",
		Description:     "Criança irritada ou com alteração de comportamento",
		Keywords:        []string{"criança irritada", "criança irritadiça", "criança agitada"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "limping_child", Name: "Criança mancando",
		Description:     "Claudicação ou recusa em apoiar o membro em criança",
		Keywords:        []string{"criança mancando", "mancando", "claudicação", "não apoia a perna"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "worried_parent", Name: "Pais preocupados",
		Description:     "Responsáveis preocupados sem queixa definida",
		Keywords:        []string{"mãe preocupada", "pai preocupado", "pais preocupados", "responsável preocupado"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyPediatria,
	},
	{
		ID: "pregnancy", Name: "Gravidez",
		Description:     "Queixas relacionadas à gestação",
		Keywords:        []string{"grávida", "gravida", "gestante", "gravidez", "contrações", "bolsa rompeu", "trabalho de parto"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyGinecologia,
	},
	{
		ID: "vaginal_bleeding", Name: "Sangramento vaginal",
		Description:     "Sangramento vaginal anormal",
		Keywords:        []string{"sangramento vaginal", "hemorragia vaginal", "menstruação abundante", "sangrando pela vagina"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyGinecologia,
	},
	{
		ID: "sti", Name: "Doenças sexualmente transmissíveis",
		Description:     "Corrimento, lesões genitais ou suspeita de IST",
		Keywords:        []string{"corrimento", "ist", "dst", "lesão genital", "ferida genital"},
		DefaultPriority: PriorityBlue, MinPriority: PriorityBlue, MaxPriority: PriorityYellow,
		Specialty: SpecialtyGinecologia,
	},
	{
		ID: "urinary_problems", Name: "Problemas urinários",
		Description:     "Disúria, retenção urinária ou hematúria",
		Keywords:        []string{"ardência ao urinar", "ardencia ao urinar", "infecção urinária", "xixi com sangue", "retenção urinária", "não consegue urinar", "cólica renal"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "testicular_pain", Name: "Dor testicular",
		Description:     "Dor ou aumento de volume testicular",
		Keywords:        []string{"dor testicular", "dor no testículo", "dor no saco", "torção testicular"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityGreen, MaxPriority: PriorityOrange,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "back_pain", Name: "Dor lombar",
		Description:     "Dor na região lombar",
		Keywords:        []string{"dor lombar", "dor nas costas", "lombalgia", "travou a coluna"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "neck_pain", Name: "Dor cervical",
		Description:     "Dor no pescoço, com ou sem trauma",
		Keywords:        []string{"dor no pescoço", "dor cervical", "torcicolo", "pescoço travado"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "sore_throat", Name: "Dor de garganta",
		Description:     "Odinofagia ou dor de garganta",
		Keywords:        []string{"dor de garganta", "garganta inflamada", "amigdalite", "dificuldade para engolir"},
		DefaultPriority: PriorityBlue, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "limb_problems", Name: "Problemas em extremidades",
		Description:     "Dor, edema ou deformidade em membros",
		Keywords:        []string{"dor no braço", "dor na perna", "torção", "entorse", "fratura", "tornozelo", "joelho inchado", "dor no ombro"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "falls", Name: "Quedas",
		Description:     "Queda da própria altura ou de altura",
		Keywords:        []string{"queda", "caiu", "tombo", "escorregou"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "head_injury", Name: "Traumatismo cranioencefálico",
		Description:     "Trauma na cabeça",
		Keywords:        []string{"bateu a cabeça", "pancada na cabeça", "trauma craniano", "tce", "corte na cabeça"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "major_trauma", Name: "Trauma maior",
		Description:     "Mecanismo de trauma de alta energia",
		Keywords:        []string{"acidente de carro", "acidente de moto", "atropelamento", "atropelado", "capotamento", "politrauma"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityYellow, MaxPriority: PriorityRed,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "torso_injury", Name: "Trauma toracoabdominal",
		Description:     "Trauma em tórax ou abdome",
		Keywords:        []string{"trauma torácico", "trauma abdominal", "pancada na barriga", "costela quebrada", "bateu o tórax"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityYellow, MaxPriority: PriorityRed,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "wounds", Name: "Feridas",
		Description:     "Cortes, lacerações e escoriações",
		Keywords:        []string{"ferida", "corte", "cortou", "laceração", "escoriação", "sangramento"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
	},
	{
		ID: "burns", Name: "Queimaduras",
		Description:     "Queimaduras térmicas, elétricas ou químicas",
		Keywords:        []string{"queimadura", "queimou", "choque elétrico", "escaldou", "óleo quente"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
	},
	{
		ID: "assault", Name: "Agressão",
		Description:     "Vítima de agressão física",
		Keywords:        []string{"agressão", "agressao", "agredido", "agredida", "espancado", "briga", "facada", "tiro"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyOrtopedia,
	},
	{
		ID: "bites_stings", Name: "Mordeduras e picadas",
		Description:     "Mordedura de animal ou picada de inseto/animal peçonhento",
		Keywords:        []string{"mordida", "mordeu", "mordedura", "picada", "cobra", "escorpião", "abelha", "aranha"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
	},
	{
		ID: "allergy", Name: "Alergia",
		Description:     "Reação alérgica, urticária ou anafilaxia",
		Keywords:        []string{"alergia", "alérgica", "urticária", "anafilaxia", "inchaço no rosto", "coceira"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "rashes", Name: "Erupções cutâneas",
		Description:     "Manchas ou lesões de pele",
		Keywords:        []string{"manchas na pele", "mancha vermelha", "erupção", "bolhas", "pele vermelha", "petéquias"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "local_infection", Name: "Infecções locais e abscessos",
		Description:     "Abscesso, celulite ou infecção localizada",
		Keywords:        []string{"abscesso", "pus", "furúnculo", "inflamado", "celulite", "unha encravada"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "foreign_body", Name: "Corpo estranho",
		Description:     "Corpo estranho em orifícios, vias aéreas ou pele",
		Keywords:        []string{"corpo estranho", "engoliu", "engasgou", "espinha de peixe", "objeto no nariz", "farpa"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
	},
	{
		ID: "eye_problems", Name: "Problemas em olhos",
		Description:     "Dor, trauma ou alteração visual",
		Keywords:        []string{"olho vermelho", "dor no olho", "visão turva", "perda de visão", "cisco no olho", "conjuntivite"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
	},
	{
		ID: "ear_problems", Name: "Problemas em ouvidos",
		Description:     "Otalgia, otorreia ou perda auditiva",
		Keywords:        []string{"dor de ouvido", "dor no ouvido", "otite", "ouvido entupido", "secreção no ouvido"},
		DefaultPriority: PriorityBlue, MinPriority: PriorityBlue, MaxPriority: PriorityYellow,
	},
	{
		ID: "facial_problems", Name: "Problemas em face",
		Description:     "Trauma ou edema facial",
		Keywords:        []string{"rosto inchado", "trauma facial", "nariz quebrado", "sangramento nasal", "epistaxe"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
	},
	{
		ID: "dental_problems", Name: "Problemas dentários",
		Description:     "Dor de dente ou trauma dentário",
		Keywords:        []string{"dor de dente", "dente quebrado", "gengiva", "dente"},
		DefaultPriority: PriorityBlue, MinPriority: PriorityBlue, MaxPriority: PriorityYellow,
	},
	{
		ID: "chemical_exposure", Name: "Exposição a agentes químicos",
		Description:     "Contato ou inalação de produto químico",
		Keywords:        []string{"produto químico", "produto quimico", "inalou", "água sanitária", "soda cáustica", "agrotóxico"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "overdose_poisoning", Name: "Overdose e envenenamento",
		Description:     "Ingestão excessiva de medicamentos ou substâncias tóxicas",
		Keywords:        []string{"overdose", "envenenamento", "intoxicação", "tomou remédios", "ingeriu veneno", "chumbinho"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityYellow, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "apparently_drunk", Name: "Embriaguez aparente",
		Description:     "Paciente aparentemente alcoolizado",
		Keywords:        []string{"bêbado", "bebado", "embriagado", "alcoolizado", "bebeu muito", "embriaguez"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "behaviour_change", Name: "Alteração do comportamento",
		Description:     "Confusão mental ou mudança aguda de comportamento",
		Keywords:        []string{"confuso", "confusão mental", "desorientado", "agitação", "comportamento estranho", "delirando"},
		DefaultPriority: PriorityYellow, MinPriority: PriorityGreen, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "mental_illness", Name: "Doença mental",
		Description:     "Sintomas psiquiátricos agudos",
		Keywords:        []string{"ansiedade", "crise de pânico", "depressão", "surto", "alucinação", "psiquiátrico"},
		DefaultPriority: PriorityGreen, MinPriority: PriorityBlue, MaxPriority: PriorityOrange,
		Specialty: SpecialtyClinicaMedica,
	},
	{
		ID: "self_harm", Name: "Autoagressão",
		Description:     "Lesão autoprovocada ou ideação suicida",
		Keywords:        []string{"autoagressão", "automutilação", "tentativa de suicídio", "se cortou", "ideação suicida", "quer se matar"},
		DefaultPriority: PriorityOrange, MinPriority: PriorityYellow, MaxPriority: PriorityRed,
		Specialty: SpecialtyClinicaMedica,
	},
}

// Catalog returns a copy of every clinical flow in declaration order.
func Catalog() []ClinicalFlow {
	out := make([]ClinicalFlow, len(catalog))
	for i := range catalog {
		out[i] = catalog[i].clone()
	}
	return out
}

// FlowByID looks up a flow by its identifier.
func FlowByID(id string) (ClinicalFlow, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			return catalog[i].clone(), true
		}
	}
	return ClinicalFlow{}, false
}

func (f ClinicalFlow) clone() ClinicalFlow {
	f.Keywords = append([]string(nil), f.Keywords...)
	return f
}

// AllowsPriority reports whether p lies inside the flow's priority range.
func (f ClinicalFlow) AllowsPriority(p Priority) bool {
	return !p.Less(f.MinPriority) && !f.MaxPriority.Less(p)
}
